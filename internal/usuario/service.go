package usuario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/bemestar/internal/auth"
	"github.com/vitaltrack/bemestar/internal/repo"
	"github.com/vitaltrack/bemestar/internal/util"
)

type tokenIssuer interface {
	CreateWithTTL(data auth.SessionData, ttl time.Duration) (*auth.TokenInfo, error)
}

type acaoWriter interface {
	CreateAcao(ctx context.Context, arg repo.CreateAcaoParams) (repo.AcaoUsuario, error)
}

type welcomeMailer interface {
	SendWelcome(ctx context.Context, destinatario, nome, link string) error
}

// Service contém as regras de negócio de usuários, incluindo o convite de
// definição de senha disparado no cadastro.
type Service struct {
	repo       *Repository
	tokens     tokenIssuer
	acoes      acaoWriter
	mailer     welcomeMailer
	conviteTTL time.Duration
	appBaseURL string
}

// NewService cria uma nova instância de Service.
func NewService(r *Repository, tokens tokenIssuer, acoes acaoWriter, mailer welcomeMailer, conviteTTL time.Duration, appBaseURL string) *Service {
	if conviteTTL <= 0 {
		conviteTTL = 24 * time.Hour
	}
	return &Service{
		repo:       r,
		tokens:     tokens,
		acoes:      acoes,
		mailer:     mailer,
		conviteTTL: conviteTTL,
		appBaseURL: appBaseURL,
	}
}

// Get busca um usuário pelo ID.
func (s *Service) Get(ctx context.Context, id int64) (*Usuario, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByEmpresa devolve os usuários ativos de uma empresa.
func (s *Service) ListByEmpresa(ctx context.Context, empresaID int64) ([]Usuario, error) {
	return s.repo.ListByEmpresa(ctx, empresaID)
}

// ListPermissoes devolve as permissões atribuídas ao usuário.
func (s *Service) ListPermissoes(ctx context.Context, usuarioID int64) ([]Permissao, error) {
	if _, err := s.repo.GetByID(ctx, usuarioID); err != nil {
		return nil, err
	}
	return s.repo.ListPermissoes(ctx, usuarioID)
}

// Create cadastra o perfil com um UID provisório e dispara o convite de
// definição de senha. A falha no convite não desfaz o cadastro: o fluxo de
// esqueci-senha cobre a retomada.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Usuario, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if input.IDEmpresa == 0 {
		return nil, errors.New("id_empresa obrigatório")
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailExiste
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u, err := s.repo.Create(ctx, uuid.New(), input)
	if err != nil {
		return nil, err
	}

	if err := s.enviarConvite(ctx, u); err != nil {
		log.Error().Err(err).Int64("usuario", u.ID).Msg("convite de definição de senha falhou")
	}

	return u, nil
}

// Update altera os dados do perfil.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Usuario, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, input)
}

// Inactivate marca o perfil como inativo.
func (s *Service) Inactivate(ctx context.Context, id int64) error {
	return s.repo.Inactivate(ctx, id)
}

// ReenviarConvite gera uma ação nova de definição de senha para um perfil que
// ainda não concluiu o primeiro acesso.
func (s *Service) ReenviarConvite(ctx context.Context, id int64) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.enviarConvite(ctx, u)
}

func (s *Service) enviarConvite(ctx context.Context, u *Usuario) error {
	codigo, err := auth.GenerateResetCode()
	if err != nil {
		return err
	}

	info, err := s.tokens.CreateWithTTL(auth.SessionData{
		UID:   u.UID.String(),
		Email: u.Email,
	}, s.conviteTTL)
	if err != nil {
		return err
	}

	if _, err := s.acoes.CreateAcao(ctx, repo.CreateAcaoParams{
		UID:      u.UID,
		Tipo:     repo.AcaoDefinePassword,
		Codigo:   codigo,
		Token:    info.Token,
		ExpiraEm: info.ExpiresAt,
	}); err != nil {
		return fmt.Errorf("registrar ação de definição de senha: %w", err)
	}

	link := fmt.Sprintf("%s/definir-senha?token=%s&uid=%s&codigo=%s", s.appBaseURL, info.Token, u.UID, codigo)
	return s.mailer.SendWelcome(ctx, u.Email, u.Nome, link)
}
