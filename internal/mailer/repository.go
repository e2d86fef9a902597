package mailer

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLogNotFound é retornado quando o registro de envio não existe.
var ErrLogNotFound = errors.New("registro de e-mail não encontrado")

// EmailLog registra uma tentativa de envio.
type EmailLog struct {
	ID           int64     `json:"id"`
	Destinatario string    `json:"destinatario"`
	Assunto      string    `json:"assunto"`
	Sucesso      bool      `json:"sucesso"`
	Erro         *string   `json:"erro,omitempty"`
	EnviadoEm    time.Time `json:"enviado_em"`
}

// Repository provê acesso à tabela email_logs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert registra a tentativa de envio.
func (r *Repository) Insert(ctx context.Context, destinatario, assunto string, sucesso bool, erro *string) (*EmailLog, error) {
	const query = `
        INSERT INTO email_logs (destinatario, assunto, sucesso, erro)
        VALUES ($1, $2, $3, $4)
        RETURNING id, destinatario, assunto, sucesso, erro, enviado_em
    `

	row := r.pool.QueryRow(ctx, query, destinatario, assunto, sucesso, erro)
	return scanEmailLog(row)
}

// List devolve os envios mais recentes.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]EmailLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
        SELECT id, destinatario, assunto, sucesso, erro, enviado_em
        FROM email_logs
        ORDER BY enviado_em DESC
        LIMIT $1 OFFSET $2
    `

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []EmailLog
	for rows.Next() {
		entry, err := scanEmailLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *entry)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return logs, nil
}

func scanEmailLog(row pgx.Row) (*EmailLog, error) {
	var l EmailLog
	if err := row.Scan(&l.ID, &l.Destinatario, &l.Assunto, &l.Sucesso, &l.Erro, &l.EnviadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}
	return &l, nil
}
