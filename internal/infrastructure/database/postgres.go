package database

import (
	"fmt"
	"time"

	"github.com/sangkips/fiscal-pos/internal/config"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/infrastructure/seed"
	applog "github.com/sangkips/fiscal-pos/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *applog.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)

	log.Info("connected to PostgreSQL", "host", cfg.Host, "database", cfg.Name)
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *applog.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		// Operators
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},

		// Catalog
		&entity.CatalogItem{},
		&entity.PromoCode{},

		// Orders and ledger
		&entity.Order{},
		&entity.OrderEntry{},
		&entity.EntryItem{},
		&entity.TenderLine{},
		&entity.DiscountBeneficiary{},
		&entity.LedgerEntry{},

		// Fiscal counters
		&entity.InvoiceCounter{},
		&entity.FiscalState{},
		&entity.CashWithdrawal{},
		&entity.ZReading{},

		// System entities
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData seeds roles, permissions, counters, the starter catalog and
// the operator accounts configured in the environment. Existing rows are kept.
func SeedDefaultData(db *gorm.DB, log *applog.Logger) error {
	log.Info("seeding default data")

	for _, p := range seed.Permissions() {
		p := p
		if err := db.Where(entity.Permission{Name: p.Name}).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", p.Name, err)
		}
	}

	var allPermissions []entity.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		return fmt.Errorf("failed to load permissions: %w", err)
	}
	byName := make(map[string]entity.Permission, len(allPermissions))
	for _, p := range allPermissions {
		byName[p.Name] = p
	}

	for _, name := range []string{entity.RoleCashier, entity.RoleManager, entity.RoleAdmin} {
		var role entity.Role
		if err := db.Where("name = ?", name).First(&role).Error; err == nil {
			continue
		}
		role = entity.Role{Name: name, GuardName: "web"}
		for _, p := range entity.DefaultRolePermissions[name] {
			role.Permissions = append(role.Permissions, byName[p])
		}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}
	}

	counters := seed.Counters()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&counters).Error; err != nil {
		return fmt.Errorf("failed to seed invoice counters: %w", err)
	}
	states := seed.FiscalStates(time.Now())
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&states).Error; err != nil {
		return fmt.Errorf("failed to seed fiscal states: %w", err)
	}

	var items int64
	if err := db.Model(&entity.CatalogItem{}).Count(&items).Error; err != nil {
		return err
	}
	if items == 0 {
		catalog := seed.Catalog()
		if err := db.Create(&catalog).Error; err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		promos := seed.Promos()
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&promos).Error; err != nil {
			return fmt.Errorf("failed to seed promos: %w", err)
		}
	}

	for _, a := range seed.Accounts() {
		var existing entity.User
		if err := db.Where("username = ?", a.Username).First(&existing).Error; err == nil {
			continue
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", a.Username, err)
		}
		var role entity.Role
		if err := db.Where("name = ?", a.Role).First(&role).Error; err != nil {
			return fmt.Errorf("failed to load role %s: %w", a.Role, err)
		}
		first, last := seed.SplitName(a.Name)
		user := entity.User{
			FirstName: first,
			LastName:  last,
			Username:  a.Username,
			Password:  string(hashed),
			IsActive:  true,
			Roles:     []entity.Role{role},
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", a.Username, err)
		}
		log.Info("operator account created", "username", a.Username, "role", a.Role)
	}

	log.Info("default data seeding completed")
	return nil
}
