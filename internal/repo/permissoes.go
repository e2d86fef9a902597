package repo

import (
	"context"

	"github.com/google/uuid"
)

// ListPermissaoIDsByUsuario devolve os IDs de permissão atualmente atribuídos.
func (q *Queries) ListPermissaoIDsByUsuario(ctx context.Context, usuarioID int64) ([]int64, error) {
	const query = `
        SELECT id_permissao
        FROM usuarios_permissoes
        WHERE id_user = $1
        ORDER BY id_permissao
    `

	rows, err := q.db.Query(ctx, query, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return ids, nil
}

// ListPermissaoTagsByUsuario devolve as etiquetas das permissões do usuário,
// embutidas no token de sessão.
func (q *Queries) ListPermissaoTagsByUsuario(ctx context.Context, usuarioID int64) ([]string, error) {
	const query = `
        SELECT p.tag
        FROM usuarios_permissoes up
        JOIN permissoes p ON p.id = up.id_permissao
        WHERE up.id_user = $1
        ORDER BY p.id
    `

	rows, err := q.db.Query(ctx, query, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return tags, nil
}

// InsertUsuarioPermissao atribui uma permissão. O índice único
// (id_user, id_permissao) torna a operação idempotente.
func (q *Queries) InsertUsuarioPermissao(ctx context.Context, usuarioID, permissaoID int64, uid uuid.UUID) error {
	const query = `
        INSERT INTO usuarios_permissoes (id_user, id_permissao, uid)
        VALUES ($1, $2, $3)
        ON CONFLICT (id_user, id_permissao) DO NOTHING
    `

	_, err := q.db.Exec(ctx, query, usuarioID, permissaoID, uid)
	return err
}

// DeleteUsuarioPermissoes remove o conjunto de permissões informado.
func (q *Queries) DeleteUsuarioPermissoes(ctx context.Context, usuarioID int64, permissaoIDs []int64) error {
	if len(permissaoIDs) == 0 {
		return nil
	}

	const query = `
        DELETE FROM usuarios_permissoes
        WHERE id_user = $1 AND id_permissao = ANY($2)
    `

	_, err := q.db.Exec(ctx, query, usuarioID, permissaoIDs)
	return err
}
