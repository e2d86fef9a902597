package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstrai pool ou transação pgx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries agrupa o acesso às tabelas centrais (usuários, permissões, vínculos, ações).
type Queries struct {
	db DBTX
}

// New cria o conjunto de queries sobre pool ou transação.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx devolve uma cópia executando sobre a transação informada.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}
