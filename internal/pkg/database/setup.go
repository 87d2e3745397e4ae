package database

import (
	"fmt"
	"log"
	"time"

	"github.com/yabreu65/buildingOs-sub002/app/models"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/env"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/plancatalog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

const maxRetries = 5
const retryDelay = 5 * time.Second

func SetupDatabase() {
	var err error
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{})
		if err == nil {
			DB.AutoMigrate(
				&models.User{},
				&models.Tenant{},
				&models.Membership{},
				&models.Building{},
				&models.Unit{},
				&models.Occupant{},
				&models.BillingPlan{},
				&models.Subscription{},
				&models.SubscriptionEvent{},
				&models.PlanChangeRequest{},
				&models.Charge{},
				&models.Payment{},
				&models.PaymentAllocation{},
				&models.AuditLog{},
			)

			seedBillingPlans(DB)
			return
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

// GetDB returns the shared database handle.
func GetDB() *gorm.DB {
	return DB
}

// SetDB overrides the shared handle; used by tests.
func SetDB(db *gorm.DB) {
	DB = db
}

// seedBillingPlans installs the catalog rows if they are missing. The table
// mirrors the in-code catalog; limits live in plancatalog.
func seedBillingPlans(db *gorm.DB) {
	for _, plan := range plancatalog.All() {
		limits := plancatalog.LimitsFor(plan)
		row := models.BillingPlan{
			PlanID:            string(plan),
			Rank:              plancatalog.Rank(plan),
			MaxBuildings:      limits.MaxBuildings,
			MaxUnits:          limits.MaxUnits,
			MaxUsers:          limits.MaxUsers,
			MaxOccupants:      limits.MaxOccupants,
			CanExportReports:  limits.CanExportReports,
			CanBulkOperations: limits.CanBulkOperations,
			SupportLevel:      limits.SupportLevel,
		}
		if err := db.Where("plan_id = ?", row.PlanID).FirstOrCreate(&row).Error; err != nil {
			log.Printf("failed to seed billing plan %s: %v", row.PlanID, err)
		}
	}
}
