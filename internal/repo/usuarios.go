package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const usuarioColumns = `id, uid, nome, email, telefone, cargo, id_empresa, status, criado_em`

// GetUsuarioByEmail recupera usuário pelo e-mail normalizado.
func (q *Queries) GetUsuarioByEmail(ctx context.Context, email string) (Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE email = $1`

	row := q.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email)))
	return scanUsuario(row)
}

// GetUsuarioByUID recupera usuário pela identidade do provedor.
func (q *Queries) GetUsuarioByUID(ctx context.Context, uid uuid.UUID) (Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE uid = $1`

	row := q.db.QueryRow(ctx, query, uid)
	return scanUsuario(row)
}

// GetUsuarioByID recupera usuário pelo ID interno.
func (q *Queries) GetUsuarioByID(ctx context.Context, id int64) (Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE id = $1`

	row := q.db.QueryRow(ctx, query, id)
	return scanUsuario(row)
}

// UpdateUsuarioUID religa o usuário a uma nova identidade do provedor.
func (q *Queries) UpdateUsuarioUID(ctx context.Context, id int64, uid uuid.UUID) error {
	const query = `UPDATE usuarios SET uid = $2 WHERE id = $1`

	tag, err := q.db.Exec(ctx, query, id, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListVinculosByUsuario devolve filiais e departamentos do usuário para o payload de sessão.
func (q *Queries) ListVinculosByUsuario(ctx context.Context, usuarioID int64) ([]VinculoUsuario, error) {
	const query = `
        SELECT f.id, f.nome, d.id, d.nome
        FROM usuarios_filiais uf
        JOIN filiais f ON f.id = uf.id_filial
        LEFT JOIN usuarios_departamentos ud ON ud.id_usuario = uf.id_usuario
        LEFT JOIN departamentos d ON d.id = ud.id_departamento AND d.id_filial = f.id
        WHERE uf.id_usuario = $1
        ORDER BY f.nome, d.nome
    `

	rows, err := q.db.Query(ctx, query, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vinculos []VinculoUsuario
	for rows.Next() {
		var v VinculoUsuario
		if err := rows.Scan(&v.FilialID, &v.FilialNome, &v.DepartamentoID, &v.DepartamentoNome); err != nil {
			return nil, err
		}
		vinculos = append(vinculos, v)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return vinculos, nil
}

func scanUsuario(row pgx.Row) (Usuario, error) {
	var u Usuario
	err := row.Scan(&u.ID, &u.UID, &u.Nome, &u.Email, &u.Telefone, &u.Cargo, &u.IDEmpresa, &u.Status, &u.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}
