package repository

// Store hands out the repositories of one backing store
type Store interface {
	Catalog() CatalogRepository
	Promos() PromoRepository
	Users() UserRepository
	Orders() OrderRepository
	Checkout() CheckoutRepository
	Ledger() LedgerRepository
	Fiscal() FiscalRepository
	Idempotency() IdempotencyRepository
}
