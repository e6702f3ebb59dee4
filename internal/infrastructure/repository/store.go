package repository

import (
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"gorm.io/gorm"
)

// Store is the Postgres-backed repository set
type Store struct {
	db *gorm.DB
}

// NewStore creates the gorm repository set over db
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Catalog returns the catalog repository
func (s *Store) Catalog() domainRepo.CatalogRepository { return NewCatalogRepository(s.db) }

// Promos returns the promo code repository
func (s *Store) Promos() domainRepo.PromoRepository { return NewPromoRepository(s.db) }

// Users returns the user repository
func (s *Store) Users() domainRepo.UserRepository { return NewUserRepository(s.db) }

// Orders returns the order repository
func (s *Store) Orders() domainRepo.OrderRepository { return NewOrderRepository(s.db) }

// Checkout returns the checkout repository
func (s *Store) Checkout() domainRepo.CheckoutRepository { return NewCheckoutRepository(s.db) }

// Ledger returns the ledger repository
func (s *Store) Ledger() domainRepo.LedgerRepository { return NewLedgerRepository(s.db) }

// Fiscal returns the fiscal repository
func (s *Store) Fiscal() domainRepo.FiscalRepository { return NewFiscalRepository(s.db) }

// Idempotency returns the idempotency key repository
func (s *Store) Idempotency() domainRepo.IdempotencyRepository { return NewIdempotencyRepository(s.db) }

var _ domainRepo.Store = (*Store)(nil)
