// Package departamento gerencia os departamentos de uma filial.
package departamento

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitaltrack/bemestar/internal/util"
)

// ErrNotFound indica departamento inexistente.
var ErrNotFound = errors.New("departamento não encontrado")

// Departamento representa um departamento dentro de uma filial.
type Departamento struct {
	ID       int64     `json:"id"`
	IDFilial int64     `json:"id_filial"`
	Nome     string    `json:"nome"`
	Status   bool      `json:"status"`
	CriadoEm time.Time `json:"criado_em"`
}

// CreateInput contém os campos para cadastrar um departamento.
type CreateInput struct {
	IDFilial int64
	Nome     string
}

// UpdateInput contém os campos alteráveis.
type UpdateInput struct {
	ID     int64
	Nome   string
	Status bool
}

// Repository fornece acesso à tabela departamentos.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const departamentoColumns = `id, id_filial, nome, status, criado_em`

// GetByID recupera departamento pelo ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Departamento, error) {
	const query = `SELECT ` + departamentoColumns + ` FROM departamentos WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanDepartamento(row)
}

// ListByFilial devolve os departamentos ativos de uma filial.
func (r *Repository) ListByFilial(ctx context.Context, filialID int64) ([]Departamento, error) {
	const query = `
        SELECT ` + departamentoColumns + `
        FROM departamentos
        WHERE id_filial = $1 AND status
        ORDER BY nome
    `

	rows, err := r.pool.Query(ctx, query, filialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departamentos []Departamento
	for rows.Next() {
		d, err := scanDepartamento(rows)
		if err != nil {
			return nil, err
		}
		departamentos = append(departamentos, *d)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return departamentos, nil
}

// Create insere novo departamento ativo.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Departamento, error) {
	const query = `
        INSERT INTO departamentos (id_filial, nome, status)
        VALUES ($1, $2, true)
        RETURNING ` + departamentoColumns

	row := r.pool.QueryRow(ctx, query, input.IDFilial, strings.TrimSpace(input.Nome))
	return scanDepartamento(row)
}

// Update altera os dados principais, incluindo o flag de status.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Departamento, error) {
	const query = `
        UPDATE departamentos
        SET nome = $2, status = $3
        WHERE id = $1
        RETURNING ` + departamentoColumns

	row := r.pool.QueryRow(ctx, query, input.ID, strings.TrimSpace(input.Nome), input.Status)
	return scanDepartamento(row)
}

// Inactivate desativa o departamento sem removê-lo fisicamente.
func (r *Repository) Inactivate(ctx context.Context, id int64) error {
	const query = `UPDATE departamentos SET status = false WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDepartamento(row pgx.Row) (*Departamento, error) {
	var d Departamento
	if err := row.Scan(&d.ID, &d.IDFilial, &d.Nome, &d.Status, &d.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Service contém as regras de negócio de departamentos.
type Service struct {
	repo *Repository
}

// NewService cria uma nova instância de Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Get busca um departamento pelo ID.
func (s *Service) Get(ctx context.Context, id int64) (*Departamento, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByFilial devolve os departamentos ativos de uma filial.
func (s *Service) ListByFilial(ctx context.Context, filialID int64) ([]Departamento, error) {
	return s.repo.ListByFilial(ctx, filialID)
}

// Create cadastra um departamento novo.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Departamento, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	if input.IDFilial == 0 {
		return nil, errors.New("id_filial obrigatório")
	}
	return s.repo.Create(ctx, input)
}

// Update altera os dados do departamento.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Departamento, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, input)
}

// Inactivate marca o departamento como inativo.
func (s *Service) Inactivate(ctx context.Context, id int64) error {
	return s.repo.Inactivate(ctx, id)
}
