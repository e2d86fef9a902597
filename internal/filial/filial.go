// Package filial gerencia as filiais de uma empresa.
package filial

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitaltrack/bemestar/internal/util"
)

// ErrNotFound indica filial inexistente.
var ErrNotFound = errors.New("filial não encontrada")

// Filial representa uma unidade física da empresa.
type Filial struct {
	ID        int64     `json:"id"`
	IDEmpresa int64     `json:"id_empresa"`
	Nome      string    `json:"nome"`
	Cidade    *string   `json:"cidade,omitempty"`
	Status    bool      `json:"status"`
	CriadoEm  time.Time `json:"criado_em"`
}

// CreateInput contém os campos para cadastrar uma filial.
type CreateInput struct {
	IDEmpresa int64
	Nome      string
	Cidade    *string
}

// UpdateInput contém os campos alteráveis.
type UpdateInput struct {
	ID     int64
	Nome   string
	Cidade *string
	Status bool
}

// Repository fornece acesso à tabela filiais.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const filialColumns = `id, id_empresa, nome, cidade, status, criado_em`

// GetByID recupera filial pelo ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Filial, error) {
	const query = `SELECT ` + filialColumns + ` FROM filiais WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanFilial(row)
}

// ListByEmpresa devolve as filiais ativas de uma empresa.
func (r *Repository) ListByEmpresa(ctx context.Context, empresaID int64) ([]Filial, error) {
	const query = `
        SELECT ` + filialColumns + `
        FROM filiais
        WHERE id_empresa = $1 AND status
        ORDER BY nome
    `

	rows, err := r.pool.Query(ctx, query, empresaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var filiais []Filial
	for rows.Next() {
		f, err := scanFilial(rows)
		if err != nil {
			return nil, err
		}
		filiais = append(filiais, *f)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return filiais, nil
}

// Create insere nova filial ativa.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Filial, error) {
	const query = `
        INSERT INTO filiais (id_empresa, nome, cidade, status)
        VALUES ($1, $2, $3, true)
        RETURNING ` + filialColumns

	row := r.pool.QueryRow(ctx, query, input.IDEmpresa, strings.TrimSpace(input.Nome), input.Cidade)
	return scanFilial(row)
}

// Update altera os dados principais, incluindo o flag de status.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Filial, error) {
	const query = `
        UPDATE filiais
        SET nome = $2, cidade = $3, status = $4
        WHERE id = $1
        RETURNING ` + filialColumns

	row := r.pool.QueryRow(ctx, query, input.ID, strings.TrimSpace(input.Nome), input.Cidade, input.Status)
	return scanFilial(row)
}

// Inactivate desativa a filial sem removê-la fisicamente.
func (r *Repository) Inactivate(ctx context.Context, id int64) error {
	const query = `UPDATE filiais SET status = false WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanFilial(row pgx.Row) (*Filial, error) {
	var f Filial
	if err := row.Scan(&f.ID, &f.IDEmpresa, &f.Nome, &f.Cidade, &f.Status, &f.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Service contém as regras de negócio de filiais.
type Service struct {
	repo *Repository
}

// NewService cria uma nova instância de Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Get busca uma filial pelo ID.
func (s *Service) Get(ctx context.Context, id int64) (*Filial, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByEmpresa devolve as filiais ativas de uma empresa.
func (s *Service) ListByEmpresa(ctx context.Context, empresaID int64) ([]Filial, error) {
	return s.repo.ListByEmpresa(ctx, empresaID)
}

// Create cadastra uma filial nova.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Filial, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	if input.IDEmpresa == 0 {
		return nil, errors.New("id_empresa obrigatório")
	}
	return s.repo.Create(ctx, input)
}

// Update altera os dados da filial.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Filial, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, input)
}

// Inactivate marca a filial como inativa.
func (s *Service) Inactivate(ctx context.Context, id int64) error {
	return s.repo.Inactivate(ctx, id)
}
