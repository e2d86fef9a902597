package empresa

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository fornece acesso à tabela empresas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const empresaColumns = `id, nome, cnpj, status, criado_em`

// GetByID recupera empresa pelo ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Empresa, error) {
	const query = `SELECT ` + empresaColumns + ` FROM empresas WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanEmpresa(row)
}

// List devolve as empresas ativas.
func (r *Repository) List(ctx context.Context) ([]Empresa, error) {
	const query = `SELECT ` + empresaColumns + ` FROM empresas WHERE status ORDER BY nome`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var empresas []Empresa
	for rows.Next() {
		e, err := scanEmpresa(rows)
		if err != nil {
			return nil, err
		}
		empresas = append(empresas, *e)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return empresas, nil
}

// Create insere nova empresa ativa.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Empresa, error) {
	const query = `
        INSERT INTO empresas (nome, cnpj, status)
        VALUES ($1, $2, true)
        RETURNING ` + empresaColumns

	row := r.pool.QueryRow(ctx, query, strings.TrimSpace(input.Nome), input.CNPJ)
	return scanEmpresa(row)
}

// Update altera os dados principais, incluindo o flag de status (soft delete).
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Empresa, error) {
	const query = `
        UPDATE empresas
        SET nome = $2, cnpj = $3, status = $4
        WHERE id = $1
        RETURNING ` + empresaColumns

	row := r.pool.QueryRow(ctx, query, input.ID, strings.TrimSpace(input.Nome), input.CNPJ, input.Status)
	return scanEmpresa(row)
}

// Inactivate desativa a empresa sem removê-la fisicamente.
func (r *Repository) Inactivate(ctx context.Context, id int64) error {
	const query = `UPDATE empresas SET status = false WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEmpresa(row pgx.Row) (*Empresa, error) {
	var e Empresa
	if err := row.Scan(&e.ID, &e.Nome, &e.CNPJ, &e.Status, &e.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
