// Package memory is a single-process store behind one RWMutex. It implements
// the same repository interfaces as the gorm store and is used for demo
// terminals and tests.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	"github.com/sangkips/fiscal-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/internal/infrastructure/seed"
	"golang.org/x/crypto/bcrypt"
)

var errInjected = errors.New("injected ledger failure")

// Store holds all state in maps guarded by mu
type Store struct {
	mu          sync.RWMutex
	catalog     map[uuid.UUID]entity.CatalogItem
	promos      map[string]entity.PromoCode
	users       map[uuid.UUID]entity.User
	roles       map[string]entity.Role
	orders      map[uuid.UUID]*entity.Order
	invoices    map[enum.Mode]map[int64]uuid.UUID
	counters    map[enum.Mode]int64
	ledger      []entity.LedgerEntry
	reversedBy  map[uuid.UUID]uuid.UUID
	states      map[enum.Mode]*entity.FiscalState
	withdrawals []entity.CashWithdrawal
	zReadings   []entity.ZReading
	idempotency map[string]entity.IdempotencyKey

	failOnLedgerRow int
	now             func() time.Time
}

// New returns an empty store with zeroed counters for both modes
func New() *Store {
	s := &Store{
		catalog:     make(map[uuid.UUID]entity.CatalogItem),
		promos:      make(map[string]entity.PromoCode),
		users:       make(map[uuid.UUID]entity.User),
		roles:       make(map[string]entity.Role),
		orders:      make(map[uuid.UUID]*entity.Order),
		invoices:    make(map[enum.Mode]map[int64]uuid.UUID),
		counters:    make(map[enum.Mode]int64),
		reversedBy:  make(map[uuid.UUID]uuid.UUID),
		states:      make(map[enum.Mode]*entity.FiscalState),
		idempotency: make(map[string]entity.IdempotencyKey),
		now:         time.Now,
	}
	now := s.now()
	for _, c := range seed.Counters() {
		s.counters[c.Mode] = c.LastInvoiceNo
		s.invoices[c.Mode] = make(map[int64]uuid.UUID)
	}
	for _, st := range seed.FiscalStates(now) {
		st := st
		s.states[st.Mode] = &st
	}
	var nextPermID uint = 1
	perms := map[string]entity.Permission{}
	for _, p := range seed.Permissions() {
		p.ID = nextPermID
		nextPermID++
		perms[p.Name] = p
	}
	var nextRoleID uint = 1
	for _, name := range []string{entity.RoleCashier, entity.RoleManager, entity.RoleAdmin} {
		role := entity.Role{ID: nextRoleID, Name: name, GuardName: "web"}
		nextRoleID++
		for _, p := range entity.DefaultRolePermissions[name] {
			role.Permissions = append(role.Permissions, perms[p])
		}
		s.roles[name] = role
	}
	return s
}

// NewSeeded returns a store loaded with the starter catalog, promos and the
// operator accounts configured in the environment
func NewSeeded() (*Store, error) {
	s := New()
	for _, item := range seed.Catalog() {
		s.catalog[item.ID] = item
	}
	for _, p := range seed.Promos() {
		s.promos[strings.ToUpper(p.Code)] = p
	}
	for _, a := range seed.Accounts() {
		if err := s.AddUser(a.Username, a.Password, a.Name, a.Role); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddUser creates an operator with a bcrypt-hashed password
func (s *Store) AddUser(username, password, name, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	first, last := seed.SplitName(name)
	user := entity.User{ID: uuid.New(), Username: username, Password: string(hash), FirstName: first, LastName: last, IsActive: true}
	if err := s.Users().Create(context.Background(), &user); err != nil {
		return err
	}
	return s.Users().AssignRole(context.Background(), user.ID, role)
}

// InjectLedgerFailure makes the next finalize fail while inserting the given
// 1-based ledger row. Zero disables it.
func (s *Store) InjectLedgerFailure(row int) {
	s.mu.Lock()
	s.failOnLedgerRow = row
	s.mu.Unlock()
}

// SetClock replaces the store clock
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Catalog returns the catalog repository view of the store
func (s *Store) Catalog() domainRepo.CatalogRepository { return &catalogRepository{s: s} }

// Promos returns the promo repository view of the store
func (s *Store) Promos() domainRepo.PromoRepository { return &promoRepository{s: s} }

// Users returns the user repository view of the store
func (s *Store) Users() domainRepo.UserRepository { return &userRepository{s: s} }

// Orders returns the order repository view of the store
func (s *Store) Orders() domainRepo.OrderRepository { return &orderRepository{s: s} }

// Checkout returns the checkout repository view of the store
func (s *Store) Checkout() domainRepo.CheckoutRepository { return &checkoutRepository{s: s} }

// Ledger returns the ledger repository view of the store
func (s *Store) Ledger() domainRepo.LedgerRepository { return &ledgerRepository{s: s} }

// Fiscal returns the fiscal repository view of the store
func (s *Store) Fiscal() domainRepo.FiscalRepository { return &fiscalRepository{s: s} }

// Idempotency returns the idempotency repository view of the store
func (s *Store) Idempotency() domainRepo.IdempotencyRepository { return &idempotencyRepository{s: s} }
var _ domainRepo.Store = (*Store)(nil)
