// Package cliente executa o onboarding de um cliente novo: empresa, usuário
// administrador e o conjunto inicial de permissões, numa única transação.
package cliente

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/bemestar/internal/auth"
	"github.com/vitaltrack/bemestar/internal/db"
	"github.com/vitaltrack/bemestar/internal/empresa"
	"github.com/vitaltrack/bemestar/internal/repo"
	"github.com/vitaltrack/bemestar/internal/service"
	"github.com/vitaltrack/bemestar/internal/usuario"
	"github.com/vitaltrack/bemestar/internal/util"
)

// ErrEmailExiste indica e-mail do administrador já cadastrado.
var ErrEmailExiste = errors.New("e-mail do administrador já cadastrado")

// OnboardInput contém os dados do cliente e do administrador inicial.
type OnboardInput struct {
	EmpresaNome   string
	CNPJ          *string
	AdminNome     string
	AdminEmail    string
	AdminTelefone *string
	AdminCargo    *string
}

// OnboardResult devolve a empresa e o administrador criados.
type OnboardResult struct {
	Empresa empresa.Empresa `json:"empresa"`
	Admin   usuario.Usuario `json:"admin"`
}

type tokenIssuer interface {
	CreateWithTTL(data auth.SessionData, ttl time.Duration) (*auth.TokenInfo, error)
}

type welcomeMailer interface {
	SendWelcome(ctx context.Context, destinatario, nome, link string) error
}

// Service orquestra o onboarding.
type Service struct {
	pool       *pgxpool.Pool
	tokens     tokenIssuer
	mailer     welcomeMailer
	conviteTTL time.Duration
	appBaseURL string
}

// NewService cria o serviço de onboarding.
func NewService(pool *pgxpool.Pool, tokens tokenIssuer, mailer welcomeMailer, conviteTTL time.Duration, appBaseURL string) *Service {
	if conviteTTL <= 0 {
		conviteTTL = 24 * time.Hour
	}
	return &Service{
		pool:       pool,
		tokens:     tokens,
		mailer:     mailer,
		conviteTTL: conviteTTL,
		appBaseURL: appBaseURL,
	}
}

// Onboard cria empresa, administrador, permissões iniciais e a ação de
// definição de senha numa transação única. O e-mail de boas-vindas sai depois
// do commit e a falha dele não desfaz o onboarding.
func (s *Service) Onboard(ctx context.Context, input OnboardInput) (*OnboardResult, error) {
	if err := util.RequireString(input.EmpresaNome, "nome da empresa"); err != nil {
		return nil, err
	}
	if err := util.RequireString(input.AdminNome, "nome do administrador"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(input.AdminEmail); err != nil {
		return nil, err
	}

	uid := uuid.New()
	codigo, err := auth.GenerateResetCode()
	if err != nil {
		return nil, err
	}

	info, err := s.tokens.CreateWithTTL(auth.SessionData{
		UID:   uid.String(),
		Email: strings.ToLower(strings.TrimSpace(input.AdminEmail)),
	}, s.conviteTTL)
	if err != nil {
		return nil, err
	}

	var result OnboardResult
	err = db.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		queries := repo.New(tx)

		if _, err := queries.GetUsuarioByEmail(ctx, input.AdminEmail); err == nil {
			return ErrEmailExiste
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		emp, err := insertEmpresa(ctx, tx, input.EmpresaNome, input.CNPJ)
		if err != nil {
			return fmt.Errorf("criar empresa: %w", err)
		}

		admin, err := insertAdmin(ctx, tx, uid, emp.ID, input)
		if err != nil {
			return fmt.Errorf("criar administrador: %w", err)
		}

		permissoes := service.NewPermissaoService(queries)
		if err := permissoes.CreatePermissoesCliente(ctx, admin.ID, uid); err != nil {
			return fmt.Errorf("conceder permissões iniciais: %w", err)
		}

		if _, err := queries.CreateAcao(ctx, repo.CreateAcaoParams{
			UID:      uid,
			Tipo:     repo.AcaoDefinePassword,
			Codigo:   codigo,
			Token:    info.Token,
			ExpiraEm: info.ExpiresAt,
		}); err != nil {
			return fmt.Errorf("registrar ação de definição de senha: %w", err)
		}

		result.Empresa = *emp
		result.Admin = *admin
		return nil
	})
	if err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/definir-senha?token=%s&uid=%s&codigo=%s", s.appBaseURL, info.Token, uid, codigo)
	if err := s.mailer.SendWelcome(ctx, result.Admin.Email, result.Admin.Nome, link); err != nil {
		log.Error().Err(err).Int64("usuario", result.Admin.ID).Msg("e-mail de boas-vindas do onboarding falhou")
	}

	return &result, nil
}

func insertEmpresa(ctx context.Context, tx pgx.Tx, nome string, cnpj *string) (*empresa.Empresa, error) {
	const query = `
        INSERT INTO empresas (nome, cnpj, status)
        VALUES ($1, $2, true)
        RETURNING id, nome, cnpj, status, criado_em
    `

	var e empresa.Empresa
	err := tx.QueryRow(ctx, query, strings.TrimSpace(nome), cnpj).
		Scan(&e.ID, &e.Nome, &e.CNPJ, &e.Status, &e.CriadoEm)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func insertAdmin(ctx context.Context, tx pgx.Tx, uid uuid.UUID, empresaID int64, input OnboardInput) (*usuario.Usuario, error) {
	const query = `
        INSERT INTO usuarios (uid, nome, email, telefone, cargo, id_empresa, status)
        VALUES ($1, $2, $3, $4, $5, $6, true)
        RETURNING id, uid, nome, email, telefone, cargo, id_empresa, status, criado_em
    `

	var u usuario.Usuario
	err := tx.QueryRow(ctx, query,
		uid,
		strings.TrimSpace(input.AdminNome),
		strings.ToLower(strings.TrimSpace(input.AdminEmail)),
		input.AdminTelefone,
		input.AdminCargo,
		empresaID,
	).Scan(&u.ID, &u.UID, &u.Nome, &u.Email, &u.Telefone, &u.Cargo, &u.IDEmpresa, &u.Status, &u.CriadoEm)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
