package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX es el subconjunto común de *sql.DB y *sql.Tx que usan las consultas
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Queries agrupa todas las consultas del repositorio. Una instancia puede estar
// ligada al pool o a una transacción; InTx entrega siempre la segunda.
type Queries interface {
	MaterialQueries
	LedgerQueries
	StorageQueries
	ReportQueries
	ContractQueries
	TicketQueries
	CustomerQueries
}

// Store abre unidades de trabajo sobre la base de datos
type Store interface {
	// Queries devuelve consultas ligadas al pool, para lecturas sueltas
	Queries() Queries
	// InTx ejecuta fn dentro de una transacción; cualquier error revierte todo
	InTx(ctx context.Context, fn func(q Queries) error) error
}

type sqlStore struct {
	db *sql.DB
}

// NewStore crea el Store sobre un pool de conexiones abierto
func NewStore(db *sql.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Queries() Queries {
	return &queries{db: s.db}
}

func (s *sqlStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&queries{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// queries implementa Queries sobre un DBTX
type queries struct {
	db DBTX
}
