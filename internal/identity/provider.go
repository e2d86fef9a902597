// Package identity isola o provedor de credenciais consumido pelo AuthService.
// A implementação padrão guarda identidades no próprio Postgres; o serviço só
// conhece a interface, então um provedor hospedado pode substituí-la.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitaltrack/bemestar/internal/auth"
)

var (
	// ErrInvalidCredentials indica e-mail ou senha incorretos.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrEmailTaken indica identidade já cadastrada para o e-mail.
	ErrEmailTaken = errors.New("e-mail já cadastrado no provedor")
	// ErrIdentityNotFound indica identidade inexistente.
	ErrIdentityNotFound = errors.New("identidade não encontrada")
)

// Provider descreve as operações de identidade que o fluxo de autenticação usa.
type Provider interface {
	// Authenticate confere as credenciais e devolve o UID da identidade.
	Authenticate(ctx context.Context, email, senha string) (uuid.UUID, error)
	// SignUp provisiona uma identidade nova e devolve seu UID.
	SignUp(ctx context.Context, email, senha string) (uuid.UUID, error)
	// UpdatePassword troca a senha da identidade existente.
	UpdatePassword(ctx context.Context, uid uuid.UUID, senha string) error
	// InvalidateSession encerra a sessão da identidade no provedor.
	InvalidateSession(ctx context.Context, uid uuid.UUID) error
}

// PostgresProvider implementa Provider sobre a tabela identidades.
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider cria o provedor local.
func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

func (p *PostgresProvider) Authenticate(ctx context.Context, email, senha string) (uuid.UUID, error) {
	const query = `SELECT uid, senha_hash FROM identidades WHERE email = $1`

	var (
		uid  uuid.UUID
		hash string
	)
	err := p.pool.QueryRow(ctx, query, normalizeEmail(email)).Scan(&uid, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrInvalidCredentials
		}
		return uuid.Nil, err
	}

	ok, err := auth.Verify(senha, hash)
	if err != nil || !ok {
		return uuid.Nil, ErrInvalidCredentials
	}

	return uid, nil
}

func (p *PostgresProvider) SignUp(ctx context.Context, email, senha string) (uuid.UUID, error) {
	hash, err := auth.Hash(senha)
	if err != nil {
		return uuid.Nil, err
	}

	const query = `
        INSERT INTO identidades (uid, email, senha_hash)
        VALUES ($1, $2, $3)
        ON CONFLICT (email) DO NOTHING
        RETURNING uid
    `

	uid := uuid.New()
	err = p.pool.QueryRow(ctx, query, uid, normalizeEmail(email), hash).Scan(&uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrEmailTaken
		}
		return uuid.Nil, err
	}

	return uid, nil
}

func (p *PostgresProvider) UpdatePassword(ctx context.Context, uid uuid.UUID, senha string) error {
	hash, err := auth.Hash(senha)
	if err != nil {
		return err
	}

	const query = `UPDATE identidades SET senha_hash = $2, atualizado_em = now() WHERE uid = $1`

	tag, err := p.pool.Exec(ctx, query, uid, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

func (p *PostgresProvider) InvalidateSession(ctx context.Context, uid uuid.UUID) error {
	const query = `UPDATE identidades SET sessao_revogada_em = now() WHERE uid = $1`

	tag, err := p.pool.Exec(ctx, query, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
