package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// HasRepresentanteEmpresa indica se o usuário ainda representa alguma empresa.
func (q *Queries) HasRepresentanteEmpresa(ctx context.Context, usuarioID int64) (bool, error) {
	const query = `
        SELECT EXISTS(
            SELECT 1 FROM representantes_empresas
            WHERE id_usuario = $1 AND is_representante
        )
    `
	return q.scanExists(ctx, query, usuarioID)
}

// HasRepresentanteFilial indica se o usuário ainda representa alguma filial.
func (q *Queries) HasRepresentanteFilial(ctx context.Context, usuarioID int64) (bool, error) {
	const query = `
        SELECT EXISTS(
            SELECT 1 FROM usuarios_filiais
            WHERE id_usuario = $1 AND is_representante
        )
    `
	return q.scanExists(ctx, query, usuarioID)
}

// HasRepresentanteDepartamento indica se o usuário ainda representa algum departamento.
func (q *Queries) HasRepresentanteDepartamento(ctx context.Context, usuarioID int64) (bool, error) {
	const query = `
        SELECT EXISTS(
            SELECT 1 FROM usuarios_departamentos
            WHERE id_usuario = $1 AND is_representante
        )
    `
	return q.scanExists(ctx, query, usuarioID)
}

func (q *Queries) scanExists(ctx context.Context, query string, args ...any) (bool, error) {
	var exists bool
	if err := q.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// --- usuários ⇄ departamentos ---

// GetUsuarioDepartamento busca o vínculo exato.
func (q *Queries) GetUsuarioDepartamento(ctx context.Context, usuarioID, departamentoID int64) (UsuarioDepartamento, error) {
	const query = `
        SELECT id_usuario, id_departamento, is_representante
        FROM usuarios_departamentos
        WHERE id_usuario = $1 AND id_departamento = $2
    `

	var v UsuarioDepartamento
	err := q.db.QueryRow(ctx, query, usuarioID, departamentoID).Scan(&v.IDUsuario, &v.IDDepartamento, &v.IsRepresentante)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UsuarioDepartamento{}, ErrNotFound
		}
		return UsuarioDepartamento{}, err
	}
	return v, nil
}

// ListUsuariosDepartamentos lista vínculos, opcionalmente por departamento.
func (q *Queries) ListUsuariosDepartamentos(ctx context.Context, departamentoID *int64) ([]UsuarioDepartamento, error) {
	query := `
        SELECT id_usuario, id_departamento, is_representante
        FROM usuarios_departamentos
    `
	var args []any
	if departamentoID != nil {
		query += ` WHERE id_departamento = $1`
		args = append(args, *departamentoID)
	}
	query += ` ORDER BY id_usuario`

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vinculos []UsuarioDepartamento
	for rows.Next() {
		var v UsuarioDepartamento
		if err := rows.Scan(&v.IDUsuario, &v.IDDepartamento, &v.IsRepresentante); err != nil {
			return nil, err
		}
		vinculos = append(vinculos, v)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return vinculos, nil
}

// ListRepresentantesDepartamento lista quem representa o departamento.
func (q *Queries) ListRepresentantesDepartamento(ctx context.Context, departamentoID int64) ([]UsuarioDepartamento, error) {
	const query = `
        SELECT id_usuario, id_departamento, is_representante
        FROM usuarios_departamentos
        WHERE id_departamento = $1 AND is_representante
        ORDER BY id_usuario
    `

	rows, err := q.db.Query(ctx, query, departamentoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vinculos []UsuarioDepartamento
	for rows.Next() {
		var v UsuarioDepartamento
		if err := rows.Scan(&v.IDUsuario, &v.IDDepartamento, &v.IsRepresentante); err != nil {
			return nil, err
		}
		vinculos = append(vinculos, v)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return vinculos, nil
}

// InsertUsuarioDepartamento registra novo vínculo.
func (q *Queries) InsertUsuarioDepartamento(ctx context.Context, v UsuarioDepartamento) error {
	const query = `
        INSERT INTO usuarios_departamentos (id_usuario, id_departamento, is_representante)
        VALUES ($1, $2, $3)
    `

	_, err := q.db.Exec(ctx, query, v.IDUsuario, v.IDDepartamento, v.IsRepresentante)
	return err
}

// UpdateUsuarioDepartamento alterna o papel de representante.
func (q *Queries) UpdateUsuarioDepartamento(ctx context.Context, v UsuarioDepartamento) error {
	const query = `
        UPDATE usuarios_departamentos
        SET is_representante = $3
        WHERE id_usuario = $1 AND id_departamento = $2
    `

	tag, err := q.db.Exec(ctx, query, v.IDUsuario, v.IDDepartamento, v.IsRepresentante)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUsuarioDepartamento remove fisicamente o vínculo.
func (q *Queries) DeleteUsuarioDepartamento(ctx context.Context, usuarioID, departamentoID int64) error {
	const query = `
        DELETE FROM usuarios_departamentos
        WHERE id_usuario = $1 AND id_departamento = $2
    `

	tag, err := q.db.Exec(ctx, query, usuarioID, departamentoID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- usuários ⇄ filiais ---

// GetUsuarioFilial busca o vínculo exato.
func (q *Queries) GetUsuarioFilial(ctx context.Context, usuarioID, filialID int64) (UsuarioFilial, error) {
	const query = `
        SELECT id_usuario, id_filial, is_representante
        FROM usuarios_filiais
        WHERE id_usuario = $1 AND id_filial = $2
    `

	var v UsuarioFilial
	err := q.db.QueryRow(ctx, query, usuarioID, filialID).Scan(&v.IDUsuario, &v.IDFilial, &v.IsRepresentante)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UsuarioFilial{}, ErrNotFound
		}
		return UsuarioFilial{}, err
	}
	return v, nil
}

// ListUsuariosFiliais lista vínculos, opcionalmente por filial.
func (q *Queries) ListUsuariosFiliais(ctx context.Context, filialID *int64) ([]UsuarioFilial, error) {
	query := `
        SELECT id_usuario, id_filial, is_representante
        FROM usuarios_filiais
    `
	var args []any
	if filialID != nil {
		query += ` WHERE id_filial = $1`
		args = append(args, *filialID)
	}
	query += ` ORDER BY id_usuario`

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vinculos []UsuarioFilial
	for rows.Next() {
		var v UsuarioFilial
		if err := rows.Scan(&v.IDUsuario, &v.IDFilial, &v.IsRepresentante); err != nil {
			return nil, err
		}
		vinculos = append(vinculos, v)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return vinculos, nil
}

// ListRepresentantesFilial lista quem representa a filial.
func (q *Queries) ListRepresentantesFilial(ctx context.Context, filialID int64) ([]UsuarioFilial, error) {
	const query = `
        SELECT id_usuario, id_filial, is_representante
        FROM usuarios_filiais
        WHERE id_filial = $1 AND is_representante
        ORDER BY id_usuario
    `

	rows, err := q.db.Query(ctx, query, filialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vinculos []UsuarioFilial
	for rows.Next() {
		var v UsuarioFilial
		if err := rows.Scan(&v.IDUsuario, &v.IDFilial, &v.IsRepresentante); err != nil {
			return nil, err
		}
		vinculos = append(vinculos, v)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return vinculos, nil
}

// InsertUsuarioFilial registra novo vínculo.
func (q *Queries) InsertUsuarioFilial(ctx context.Context, v UsuarioFilial) error {
	const query = `
        INSERT INTO usuarios_filiais (id_usuario, id_filial, is_representante)
        VALUES ($1, $2, $3)
    `

	_, err := q.db.Exec(ctx, query, v.IDUsuario, v.IDFilial, v.IsRepresentante)
	return err
}

// UpdateUsuarioFilial alterna o papel de representante.
func (q *Queries) UpdateUsuarioFilial(ctx context.Context, v UsuarioFilial) error {
	const query = `
        UPDATE usuarios_filiais
        SET is_representante = $3
        WHERE id_usuario = $1 AND id_filial = $2
    `

	tag, err := q.db.Exec(ctx, query, v.IDUsuario, v.IDFilial, v.IsRepresentante)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUsuarioFilial remove fisicamente o vínculo.
func (q *Queries) DeleteUsuarioFilial(ctx context.Context, usuarioID, filialID int64) error {
	const query = `
        DELETE FROM usuarios_filiais
        WHERE id_usuario = $1 AND id_filial = $2
    `

	tag, err := q.db.Exec(ctx, query, usuarioID, filialID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- representantes de empresas ---

// GetRepresentanteEmpresa busca o vínculo exato.
func (q *Queries) GetRepresentanteEmpresa(ctx context.Context, usuarioID, empresaID int64) (RepresentanteEmpresa, error) {
	const query = `
        SELECT id_usuario, id_empresa, is_representante
        FROM representantes_empresas
        WHERE id_usuario = $1 AND id_empresa = $2
    `

	var v RepresentanteEmpresa
	err := q.db.QueryRow(ctx, query, usuarioID, empresaID).Scan(&v.IDUsuario, &v.IDEmpresa, &v.IsRepresentante)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RepresentanteEmpresa{}, ErrNotFound
		}
		return RepresentanteEmpresa{}, err
	}
	return v, nil
}

// ListRepresentantesEmpresa lista quem representa a empresa.
func (q *Queries) ListRepresentantesEmpresa(ctx context.Context, empresaID int64) ([]RepresentanteEmpresa, error) {
	const query = `
        SELECT id_usuario, id_empresa, is_representante
        FROM representantes_empresas
        WHERE id_empresa = $1 AND is_representante
        ORDER BY id_usuario
    `

	rows, err := q.db.Query(ctx, query, empresaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vinculos []RepresentanteEmpresa
	for rows.Next() {
		var v RepresentanteEmpresa
		if err := rows.Scan(&v.IDUsuario, &v.IDEmpresa, &v.IsRepresentante); err != nil {
			return nil, err
		}
		vinculos = append(vinculos, v)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return vinculos, nil
}

// InsertRepresentanteEmpresa registra novo vínculo.
func (q *Queries) InsertRepresentanteEmpresa(ctx context.Context, v RepresentanteEmpresa) error {
	const query = `
        INSERT INTO representantes_empresas (id_usuario, id_empresa, is_representante)
        VALUES ($1, $2, $3)
    `

	_, err := q.db.Exec(ctx, query, v.IDUsuario, v.IDEmpresa, v.IsRepresentante)
	return err
}

// UpdateRepresentanteEmpresa alterna o papel de representante.
func (q *Queries) UpdateRepresentanteEmpresa(ctx context.Context, v RepresentanteEmpresa) error {
	const query = `
        UPDATE representantes_empresas
        SET is_representante = $3
        WHERE id_usuario = $1 AND id_empresa = $2
    `

	tag, err := q.db.Exec(ctx, query, v.IDUsuario, v.IDEmpresa, v.IsRepresentante)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRepresentanteEmpresa remove fisicamente o vínculo.
func (q *Queries) DeleteRepresentanteEmpresa(ctx context.Context, usuarioID, empresaID int64) error {
	const query = `
        DELETE FROM representantes_empresas
        WHERE id_usuario = $1 AND id_empresa = $2
    `

	tag, err := q.db.Exec(ctx, query, usuarioID, empresaID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
