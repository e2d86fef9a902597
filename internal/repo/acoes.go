package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateAcaoParams contém os campos para registrar uma ação de senha.
type CreateAcaoParams struct {
	UID      uuid.UUID
	Tipo     string
	Codigo   string
	Token    string
	ExpiraEm time.Time
}

const acaoColumns = `id, uid, tipo, codigo, token, status, expira_em, criado_em`

// CreateAcao insere uma nova ação ativa.
func (q *Queries) CreateAcao(ctx context.Context, arg CreateAcaoParams) (AcaoUsuario, error) {
	const query = `
        INSERT INTO acoes_usuarios (uid, tipo, codigo, token, status, expira_em)
        VALUES ($1, $2, $3, $4, true, $5)
        RETURNING ` + acaoColumns

	row := q.db.QueryRow(ctx, query, arg.UID, arg.Tipo, arg.Codigo, arg.Token, arg.ExpiraEm)
	return scanAcao(row)
}

// GetAcaoByToken busca a ação pelo token exato.
func (q *Queries) GetAcaoByToken(ctx context.Context, token string) (AcaoUsuario, error) {
	const query = `SELECT ` + acaoColumns + ` FROM acoes_usuarios WHERE token = $1`

	row := q.db.QueryRow(ctx, query, token)
	return scanAcao(row)
}

// GetAcaoByTokenCodigo busca a ação pelo par token+código.
func (q *Queries) GetAcaoByTokenCodigo(ctx context.Context, token, codigo string) (AcaoUsuario, error) {
	const query = `SELECT ` + acaoColumns + ` FROM acoes_usuarios WHERE token = $1 AND codigo = $2`

	row := q.db.QueryRow(ctx, query, token, codigo)
	return scanAcao(row)
}

// GetAcaoByTokenUIDCodigo busca a ação pela tripla token+uid+código.
func (q *Queries) GetAcaoByTokenUIDCodigo(ctx context.Context, token string, uid uuid.UUID, codigo string) (AcaoUsuario, error) {
	const query = `SELECT ` + acaoColumns + ` FROM acoes_usuarios WHERE token = $1 AND uid = $2 AND codigo = $3`

	row := q.db.QueryRow(ctx, query, token, uid, codigo)
	return scanAcao(row)
}

// ConsumeAcao marca a ação como usada (status=false), garantindo uso único.
func (q *Queries) ConsumeAcao(ctx context.Context, id int64) error {
	const query = `UPDATE acoes_usuarios SET status = false WHERE id = $1 AND status`

	tag, err := q.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAcao(row pgx.Row) (AcaoUsuario, error) {
	var a AcaoUsuario
	err := row.Scan(&a.ID, &a.UID, &a.Tipo, &a.Codigo, &a.Token, &a.Status, &a.ExpiraEm, &a.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AcaoUsuario{}, ErrNotFound
		}
		return AcaoUsuario{}, err
	}
	return a, nil
}
