package usuario

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository fornece acesso à tabela usuarios.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const usuarioColumns = `id, uid, nome, email, telefone, cargo, id_empresa, status, criado_em`

// GetByID recupera usuário pelo ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanUsuario(row)
}

// GetByEmail recupera usuário pelo e-mail normalizado.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE lower(email) = lower($1)`

	row := r.pool.QueryRow(ctx, query, strings.TrimSpace(email))
	return scanUsuario(row)
}

// ListByEmpresa devolve os usuários ativos de uma empresa.
func (r *Repository) ListByEmpresa(ctx context.Context, empresaID int64) ([]Usuario, error) {
	const query = `
        SELECT ` + usuarioColumns + `
        FROM usuarios
        WHERE id_empresa = $1 AND status
        ORDER BY nome
    `

	rows, err := r.pool.Query(ctx, query, empresaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, *u)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return usuarios, nil
}

// Create insere novo usuário ativo com o UID provisório informado.
func (r *Repository) Create(ctx context.Context, uid uuid.UUID, input CreateInput) (*Usuario, error) {
	const query = `
        INSERT INTO usuarios (uid, nome, email, telefone, cargo, id_empresa, status)
        VALUES ($1, $2, $3, $4, $5, $6, true)
        RETURNING ` + usuarioColumns

	row := r.pool.QueryRow(ctx, query,
		uid,
		strings.TrimSpace(input.Nome),
		strings.ToLower(strings.TrimSpace(input.Email)),
		input.Telefone,
		input.Cargo,
		input.IDEmpresa,
	)
	return scanUsuario(row)
}

// Update altera os dados do perfil, incluindo o flag de status.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Usuario, error) {
	const query = `
        UPDATE usuarios
        SET nome = $2, telefone = $3, cargo = $4, status = $5
        WHERE id = $1
        RETURNING ` + usuarioColumns

	row := r.pool.QueryRow(ctx, query, input.ID, strings.TrimSpace(input.Nome), input.Telefone, input.Cargo, input.Status)
	return scanUsuario(row)
}

// Inactivate desativa o perfil sem removê-lo fisicamente.
func (r *Repository) Inactivate(ctx context.Context, id int64) error {
	const query = `UPDATE usuarios SET status = false WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPermissoes devolve as permissões atribuídas ao usuário.
func (r *Repository) ListPermissoes(ctx context.Context, usuarioID int64) ([]Permissao, error) {
	const query = `
        SELECT p.id, p.tag
        FROM usuarios_permissoes up
        JOIN permissoes p ON p.id = up.id_permissao
        WHERE up.id_user = $1
        ORDER BY p.id
    `

	rows, err := r.pool.Query(ctx, query, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissoes []Permissao
	for rows.Next() {
		var p Permissao
		if err := rows.Scan(&p.ID, &p.Tag); err != nil {
			return nil, err
		}
		permissoes = append(permissoes, p)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return permissoes, nil
}

func scanUsuario(row pgx.Row) (*Usuario, error) {
	var u Usuario
	err := row.Scan(&u.ID, &u.UID, &u.Nome, &u.Email, &u.Telefone, &u.Cargo, &u.IDEmpresa, &u.Status, &u.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
