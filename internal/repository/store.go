package repository

import (
	"context"

	"github.com/projectplanning/planning-cloud-api/internal/database"
	"gorm.io/gorm"
)

// GormStore is a GORM implementation of Store
type GormStore struct {
	db    *gorm.DB
	retry database.RetryPolicy
}

// NewStore creates a Store whose transactions follow the given retry policy
func NewStore(db *gorm.DB, retry database.RetryPolicy) Store {
	return &GormStore{db: db, retry: retry}
}

func (s *GormStore) TaskTypes() TaskTypeRepository {
	return NewTaskTypeRepository(s.db)
}

func (s *GormStore) Tasks() TaskRepository {
	return NewTaskRepository(s.db)
}

func (s *GormStore) Commitments() CommitmentRepository {
	return NewCommitmentRepository(s.db)
}

func (s *GormStore) Observations() ObservationRepository {
	return NewObservationRepository(s.db)
}

// Transaction runs fn on a transaction-scoped store. Nested calls reuse the
// outer transaction through a savepoint and are never retried on their own.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return database.RunInTx(ctx, s.db, s.retry, func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, retry: database.NoRetry})
	})
}
