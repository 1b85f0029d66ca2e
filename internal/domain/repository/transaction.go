package repository

import "context"

// RepositoryFactory hands out repository instances that are all bound to the
// same unit of work (a single database transaction).
type RepositoryFactory interface {
	UserRepo() UserRepository
	RefreshTokenRepo() RefreshTokenRepository
}

// TransactionManager runs a function within a single database transaction.
// The callback receives a factory whose repositories share that transaction;
// returning an error rolls everything back.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(repoFactory RepositoryFactory) error) error
}
