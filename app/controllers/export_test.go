package controllers

import (
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/ledger"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/subscription"
)

// Seams for wiring fake-backed services into the handlers from routed tests.

func SetSubscriptionService(s *subscription.Service) {
	subscriptionService = s
}

func SetLedgerService(s *ledger.Service) {
	ledgerService = s
}
