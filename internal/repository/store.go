package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so repositories run
// unchanged inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles the repositories bound to one connection or transaction.
type Store interface {
	Users() UserRepository
	Organizations() OrganizationRepository
	Departments() DepartmentRepository
	Teams() TeamRepository
	TeamMembers() TeamMemberRepository
	Projects() ProjectRepository
	ActivityLogs() ActivityLogRepository
}

// TxRunner runs fn inside a single transaction. Any error returned by fn
// rolls back every write made through the supplied Store.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	db DBTX
}

// NewStore binds repositories to db.
func NewStore(db DBTX) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Users() UserRepository                 { return &userRepository{db: s.db} }
func (s *pgStore) Organizations() OrganizationRepository { return &organizationRepository{db: s.db} }
func (s *pgStore) Departments() DepartmentRepository     { return &departmentRepository{db: s.db} }
func (s *pgStore) Teams() TeamRepository                 { return &teamRepository{db: s.db} }
func (s *pgStore) TeamMembers() TeamMemberRepository     { return &teamMemberRepository{db: s.db} }
func (s *pgStore) Projects() ProjectRepository           { return &projectRepository{db: s.db} }
func (s *pgStore) ActivityLogs() ActivityLogRepository   { return &activityLogRepository{db: s.db} }

type pgTxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds a TxRunner over pool.
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgTxRunner{pool: pool}
}

func (r *pgTxRunner) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(NewStore(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
