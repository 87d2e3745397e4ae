package plancatalog

import "strings"

type Plan string

const (
	PlanFree       Plan = "free"
	PlanBasic      Plan = "basic"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// ResourceKind is a countable entity capped by the active plan.
type ResourceKind string

const (
	ResourceBuildings ResourceKind = "buildings"
	ResourceUnits     ResourceKind = "units"
	ResourceUsers     ResourceKind = "users"
	ResourceOccupants ResourceKind = "occupants"
)

// Unlimited is the conventional "effectively unlimited" cap. It is a real
// number, not a sentinel: callers only ever compare counts against it.
const Unlimited = 9999

const (
	SupportCommunity = "community"
	SupportStandard  = "standard"
	SupportPriority  = "priority"
	SupportDedicated = "dedicated"
)

// Limits holds the numeric caps and feature flags of one plan tier.
type Limits struct {
	MaxBuildings      int
	MaxUnits          int
	MaxUsers          int
	MaxOccupants      int
	CanExportReports  bool
	CanBulkOperations bool
	SupportLevel      string
}

var catalog = map[Plan]Limits{
	PlanFree: {
		MaxBuildings: 1,
		MaxUnits:     10,
		MaxUsers:     3,
		MaxOccupants: 20,
		SupportLevel: SupportCommunity,
	},
	PlanBasic: {
		MaxBuildings:     3,
		MaxUnits:         50,
		MaxUsers:         10,
		MaxOccupants:     150,
		CanExportReports: true,
		SupportLevel:     SupportStandard,
	},
	PlanPro: {
		MaxBuildings:      10,
		MaxUnits:          300,
		MaxUsers:          30,
		MaxOccupants:      1000,
		CanExportReports:  true,
		CanBulkOperations: true,
		SupportLevel:      SupportPriority,
	},
	PlanEnterprise: {
		MaxBuildings:      Unlimited,
		MaxUnits:          Unlimited,
		MaxUsers:          Unlimited,
		MaxOccupants:      Unlimited,
		CanExportReports:  true,
		CanBulkOperations: true,
		SupportLevel:      SupportDedicated,
	},
}

// Normalize maps arbitrary input to a known plan, defaulting to free.
func Normalize(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanBasic):
		return PlanBasic
	case string(PlanPro):
		return PlanPro
	case string(PlanEnterprise):
		return PlanEnterprise
	default:
		return PlanFree
	}
}

// IsKnown reports whether the input names an existing plan tier.
func IsKnown(plan string) bool {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanFree), string(PlanBasic), string(PlanPro), string(PlanEnterprise):
		return true
	default:
		return false
	}
}

// Rank returns the upgrade rank of a plan (free=0 .. enterprise=3).
func Rank(plan Plan) int {
	switch Normalize(string(plan)) {
	case PlanEnterprise:
		return 3
	case PlanPro:
		return 2
	case PlanBasic:
		return 1
	default:
		return 0
	}
}

// LimitFor returns the numeric cap of a resource kind under a plan.
func LimitFor(plan Plan, kind ResourceKind) int {
	l := LimitsFor(plan)
	switch kind {
	case ResourceBuildings:
		return l.MaxBuildings
	case ResourceUnits:
		return l.MaxUnits
	case ResourceUsers:
		return l.MaxUsers
	case ResourceOccupants:
		return l.MaxOccupants
	default:
		return 0
	}
}

// LimitsFor returns the full limit set of a plan.
func LimitsFor(plan Plan) Limits {
	return catalog[Normalize(string(plan))]
}

// All returns every plan in ascending rank order.
func All() []Plan {
	return []Plan{PlanFree, PlanBasic, PlanPro, PlanEnterprise}
}

// ValidResourceKind reports whether kind names a quota-counted resource.
func ValidResourceKind(kind ResourceKind) bool {
	switch kind {
	case ResourceBuildings, ResourceUnits, ResourceUsers, ResourceOccupants:
		return true
	default:
		return false
	}
}
