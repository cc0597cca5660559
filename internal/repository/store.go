package repository

import "context"

// Store groups the repositories that share one database handle.
type Store interface {
	Users() UserRepository
	RefreshTokens() RefreshTokenRepository
	Carts() CartRepository
	// WithTx runs fn with a Store whose repositories share one transaction.
	WithTx(ctx context.Context, fn func(s Store) error) error
}

type pgStore struct {
	db   TxStarter
	exec DBTX
}

// NewStore creates a Store over the given pool.
func NewStore(db TxStarter) Store {
	return &pgStore{db: db, exec: db}
}

func (s *pgStore) Users() UserRepository {
	return NewUserRepository(s.exec)
}

func (s *pgStore) RefreshTokens() RefreshTokenRepository {
	return NewRefreshTokenRepository(s.exec)
}

func (s *pgStore) Carts() CartRepository {
	return NewCartRepository(s.exec)
}

func (s *pgStore) WithTx(ctx context.Context, fn func(s Store) error) error {
	return WithTx(ctx, s.db, func(tx DBTX) error {
		return fn(&pgStore{db: s.db, exec: tx})
	})
}
