// Package seed holds the default data loaded into a fresh store: roles and
// permissions, operator accounts, a starter catalog, promo codes and the
// zeroed fiscal counters of both modes.
package seed

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Account is an operator to create on first start
type Account struct {
	Username string
	Password string
	Name     string
	Role     string
}

// Accounts reads seed operators from the environment. Accounts without a
// password are skipped.
func Accounts() []Account {
	var accounts []Account
	for _, role := range []string{entity.RoleAdmin, entity.RoleManager, entity.RoleCashier} {
		prefix := strings.ToUpper(role)
		username := viper.GetString(prefix + "_USERNAME")
		password := viper.GetString(prefix + "_PASSWORD")
		if username == "" || password == "" {
			continue
		}
		name := viper.GetString(prefix + "_NAME")
		if name == "" {
			name = strings.ToUpper(role[:1]) + role[1:]
		}
		accounts = append(accounts, Account{Username: username, Password: password, Name: name, Role: role})
	}
	return accounts
}

// SplitName splits a display name into first and last name
func SplitName(name string) (string, string) {
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first, last
}

// Permissions returns every permission referenced by a default role
func Permissions() []entity.Permission {
	seen := map[string]bool{}
	var perms []entity.Permission
	for _, role := range []string{entity.RoleCashier, entity.RoleManager, entity.RoleAdmin} {
		for _, name := range entity.DefaultRolePermissions[role] {
			if !seen[name] {
				seen[name] = true
				perms = append(perms, entity.Permission{Name: name, GuardName: "web"})
			}
		}
	}
	return perms
}

// Catalog is the starter menu
func Catalog() []entity.CatalogItem {
	item := func(code, name string, kind enum.ItemKind, price string, tax enum.TaxType) entity.CatalogItem {
		return entity.CatalogItem{
			ID:       uuid.New(),
			Code:     code,
			Name:     name,
			Kind:     kind,
			Price:    decimal.RequireFromString(price),
			TaxType:  tax,
			IsActive: true,
		}
	}

	meal := item("M-CHK", "Chicken Meal", enum.ItemKindMenu, "150.00", enum.TaxTypeVATable)
	meal.RequiresDrink = true
	burger := item("M-BRG", "Burger Meal", enum.ItemKindMenu, "120.00", enum.TaxTypeVATable)
	burger.RequiresDrink = true
	burger.RequiresAddOn = true

	return []entity.CatalogItem{
		meal,
		burger,
		item("M-SPG", "Spaghetti", enum.ItemKindMenu, "95.00", enum.TaxTypeVATable),
		item("M-RCE", "Plain Rice", enum.ItemKindMenu, "25.00", enum.TaxTypeExempt),
		item("D-CLA", "Iced Tea", enum.ItemKindDrink, "35.00", enum.TaxTypeVATable),
		item("D-SDA", "Soda", enum.ItemKindDrink, "40.00", enum.TaxTypeVATable),
		item("D-WTR", "Bottled Water", enum.ItemKindDrink, "20.00", enum.TaxTypeVATable),
		item("A-FRS", "Fries", enum.ItemKindAddOn, "45.00", enum.TaxTypeVATable),
		item("A-SLD", "Side Salad", enum.ItemKindAddOn, "50.00", enum.TaxTypeVATable),
	}
}

// Promos is the starter set of promo codes
func Promos() []entity.PromoCode {
	return []entity.PromoCode{
		{ID: uuid.New(), Code: "LESS50", Name: "Less 50", Amount: decimal.NewFromInt(50), IsActive: true},
		{ID: uuid.New(), Code: "HALF", Name: "Half Off", Percent: decimal.NewFromInt(50), IsActive: true},
		{ID: uuid.New(), Code: "FREEMEAL", Name: "Free Meal", Amount: decimal.NewFromInt(1000), IsActive: true},
	}
}

// FiscalStates returns zeroed counters for both modes
func FiscalStates(now time.Time) []entity.FiscalState {
	return []entity.FiscalState{
		{Mode: enum.ModeLive, DayOpenedAt: now, FiscalTotals: entity.FiscalTotals{Payments: entity.PaymentBreakdown{}}},
		{Mode: enum.ModeTraining, DayOpenedAt: now, FiscalTotals: entity.FiscalTotals{Payments: entity.PaymentBreakdown{}}},
	}
}

// Counters returns zeroed invoice counters for both modes
func Counters() []entity.InvoiceCounter {
	return []entity.InvoiceCounter{{Mode: enum.ModeLive}, {Mode: enum.ModeTraining}}
}
