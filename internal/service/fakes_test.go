package service

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"ecommerce_api/internal/model"
	"ecommerce_api/internal/repository"
)

// memStore is an in-memory repository.Store. WithTx snapshots the maps and
// restores them when fn fails.
type memStore struct {
	mu     sync.Mutex
	users  map[string]*model.User
	tokens map[string]*model.RefreshToken
	carts  map[string]*model.Cart

	cartErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]*model.User{},
		tokens: map[string]*model.RefreshToken{},
		carts:  map[string]*model.Cart{},
	}
}

func (s *memStore) Users() repository.UserRepository                 { return memUsers{s} }
func (s *memStore) RefreshTokens() repository.RefreshTokenRepository { return memTokens{s} }
func (s *memStore) Carts() repository.CartRepository                 { return memCarts{s} }

func (s *memStore) WithTx(_ context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	users, tokens, carts := maps.Clone(s.users), maps.Clone(s.tokens), maps.Clone(s.carts)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.users, s.tokens, s.carts = users, tokens, carts
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *memStore) tokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

func (s *memStore) token(value string) *model.RefreshToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[value]
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("failed to create user: %w", repository.ErrDuplicate)
		}
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) Update(_ context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	cp := *u
	if upd.FirstName != nil {
		cp.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		cp.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		cp.Phone = upd.Phone
	}
	cp.UpdatedAt = time.Now()
	r.s.users[id] = &cp
	out := cp
	return &out, nil
}

type memTokens struct{ s *memStore }

func (r memTokens) Create(_ context.Context, t *model.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[t.Token]; ok {
		return fmt.Errorf("failed to create refresh token: %w", repository.ErrDuplicate)
	}
	t.CreatedAt = time.Now()
	cp := *t
	r.s.tokens[t.Token] = &cp
	return nil
}

func (r memTokens) FindByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, nil
	}
	cp := *t
	if u, ok := r.s.users[t.UserID]; ok {
		owner := *u
		cp.User = &owner
	}
	return &cp, nil
}

func (r memTokens) DeleteByID(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.s.tokens {
		if t.ID == id {
			delete(r.s.tokens, k)
		}
	}
	return nil
}

func (r memTokens) DeleteByToken(_ context.Context, token string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[token]; !ok {
		return 0, nil
	}
	delete(r.s.tokens, token)
	return 1, nil
}

func (r memTokens) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, k)
			n++
		}
	}
	return n, nil
}

type memCarts struct{ s *memStore }

func (r memCarts) Create(_ context.Context, userID string) (*model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.cartErr != nil {
		return nil, r.s.cartErr
	}
	cart := &model.Cart{ID: "cart-" + userID, UserID: userID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.s.carts[userID] = cart
	return cart, nil
}

// stubProducts and stubCategories back catalog service tests.
type stubProducts struct {
	all      []model.Product
	byID     map[string]*model.Product
	bySKU    map[string]*model.Product
	reviews  map[string][]model.Review
	featured []model.Product
	err      error

	filters []model.ProductFilter
}

func (r *stubProducts) FindAll(_ context.Context, f model.ProductFilter) ([]model.Product, int, error) {
	r.filters = append(r.filters, f)
	if r.err != nil {
		return nil, 0, r.err
	}
	start := f.Offset()
	if start >= len(r.all) {
		return []model.Product{}, len(r.all), nil
	}
	end := min(start+f.Limit, len(r.all))
	return r.all[start:end], len(r.all), nil
}

func (r *stubProducts) FindByID(_ context.Context, id string) (*model.Product, error) {
	return r.byID[id], r.err
}

func (r *stubProducts) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	return r.bySKU[sku], r.err
}

func (r *stubProducts) FindFeatured(_ context.Context, limit int) ([]model.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	if limit < len(r.featured) {
		return r.featured[:limit], nil
	}
	return r.featured, nil
}

func (r *stubProducts) ListReviews(_ context.Context, productID string) ([]model.Review, error) {
	return r.reviews[productID], nil
}

type stubCategories struct {
	all    []model.Category
	bySlug map[string]*model.Category
	err    error
}

func (r *stubCategories) FindAllActive(context.Context) ([]model.Category, error) {
	return r.all, r.err
}

func (r *stubCategories) FindBySlug(_ context.Context, slug string) (*model.Category, error) {
	return r.bySlug[slug], r.err
}
