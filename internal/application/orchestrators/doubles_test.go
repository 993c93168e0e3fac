package orchestrators

import (
	"context"
	"errors"
	"strings"
	"sync"

	"gymhub/internal/adapters/email"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/branch"
	"gymhub/internal/domain/product"
)

// --- in-memory test doubles ---

var errNotFound = errors.New("not found")

type memAccountStore struct {
	accounts map[string]account.Account // keyed by id
	saves    int
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: make(map[string]account.Account)}
}

func (s *memAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return account.Account{}, errNotFound
	}
	return a, nil
}

func (s *memAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return account.Account{}, errNotFound
}

func (s *memAccountStore) Save(_ context.Context, a account.Account) error {
	s.accounts[a.ID] = a
	s.saves++
	return nil
}

func (s *memAccountStore) Count(_ context.Context) (int, error) {
	return len(s.accounts), nil
}

// seedAccount stores an account with a real bcrypt hash.
func (s *memAccountStore) seedAccount(id, name, mail, password string, role account.Role) account.Account {
	a := account.Account{ID: id, Name: name, Email: mail, Role: role}
	if err := a.SetPassword(password); err != nil {
		panic(err)
	}
	s.accounts[id] = a
	return a
}

type memBranchStore struct {
	branches []branch.Branch
	err      error
}

func (s *memBranchStore) List(_ context.Context) ([]branch.Branch, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]branch.Branch(nil), s.branches...), nil
}

func (s *memBranchStore) Save(_ context.Context, b branch.Branch) error {
	s.branches = append(s.branches, b)
	return nil
}

func (s *memBranchStore) Count(_ context.Context) (int, error) {
	return len(s.branches), nil
}

type memProductStore struct {
	products map[string]product.Product
}

func (s *memProductStore) GetByID(_ context.Context, id string) (product.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return product.Product{}, errNotFound
	}
	return p, nil
}

func (s *memProductStore) Save(_ context.Context, p product.Product) error {
	if s.products == nil {
		s.products = make(map[string]product.Product)
	}
	s.products[p.ID] = p
	return nil
}

func (s *memProductStore) Count(_ context.Context) (int, error) {
	return len(s.products), nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []email.SendRequest
	err  error
}

func (r *recordingSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return email.SendResult{}, r.err
	}
	r.sent = append(r.sent, req)
	return email.SendResult{MessageID: "test"}, nil
}
