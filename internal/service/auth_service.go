package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/bemestar/internal/auth"
	"github.com/vitaltrack/bemestar/internal/identity"
	"github.com/vitaltrack/bemestar/internal/repo"
	"github.com/vitaltrack/bemestar/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrUsuarioInativo indica conta desativada (status=false).
	ErrUsuarioInativo = errors.New("usuário inativo")
	// ErrUsuarioNaoEncontrado indica identidade sem perfil correspondente.
	ErrUsuarioNaoEncontrado = errors.New("usuário não encontrado")
	// ErrRefreshDesnecessario indica token ainda longe da expiração.
	ErrRefreshDesnecessario = errors.New("token ainda válido, renovação desnecessária")
	// ErrAcaoInvalida indica ação de senha inexistente para os parâmetros.
	ErrAcaoInvalida = errors.New("token de redefinição inválido")
	// ErrAcaoExpirada indica ação passada do prazo.
	ErrAcaoExpirada = errors.New("token de redefinição expirado")
	// ErrAcaoUtilizada indica ação já consumida.
	ErrAcaoUtilizada = errors.New("token de redefinição já utilizado")
)

type authRepository interface {
	GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error)
	GetUsuarioByUID(ctx context.Context, uid uuid.UUID) (repo.Usuario, error)
	GetUsuarioByID(ctx context.Context, id int64) (repo.Usuario, error)
	UpdateUsuarioUID(ctx context.Context, id int64, uid uuid.UUID) error
	ListPermissaoTagsByUsuario(ctx context.Context, usuarioID int64) ([]string, error)
	ListVinculosByUsuario(ctx context.Context, usuarioID int64) ([]repo.VinculoUsuario, error)
	CreateAcao(ctx context.Context, arg repo.CreateAcaoParams) (repo.AcaoUsuario, error)
	GetAcaoByToken(ctx context.Context, token string) (repo.AcaoUsuario, error)
	GetAcaoByTokenCodigo(ctx context.Context, token, codigo string) (repo.AcaoUsuario, error)
	GetAcaoByTokenUIDCodigo(ctx context.Context, token string, uid uuid.UUID, codigo string) (repo.AcaoUsuario, error)
	ConsumeAcao(ctx context.Context, id int64) error
}

type resetMailer interface {
	SendPasswordReset(ctx context.Context, destinatario, nome, codigo, link string) error
}

// AuthService concentra login, logout, renovação e os fluxos de senha.
type AuthService struct {
	repo       authRepository
	provider   identity.Provider
	tokens     *auth.TokenManager
	sessions   auth.SessionStore
	mailer     resetMailer
	resetTTL   time.Duration
	appBaseURL string
}

// NewAuthService cria o serviço.
func NewAuthService(r authRepository, provider identity.Provider, tokens *auth.TokenManager, sessions auth.SessionStore, mailer resetMailer, resetTTL time.Duration, appBaseURL string) *AuthService {
	if resetTTL <= 0 {
		resetTTL = 15 * time.Minute
	}
	return &AuthService{
		repo:       r,
		provider:   provider,
		tokens:     tokens,
		sessions:   sessions,
		mailer:     mailer,
		resetTTL:   resetTTL,
		appBaseURL: appBaseURL,
	}
}

// Tokens expõe o gerenciador de tokens (útil em middlewares).
func (s *AuthService) Tokens() *auth.TokenManager {
	return s.tokens
}

// Sessions expõe o store de sessões emitidas (útil no gate de autenticação).
func (s *AuthService) Sessions() auth.SessionStore {
	return s.sessions
}

// UsuarioSessao apresenta o perfil retornado no login.
type UsuarioSessao struct {
	ID    int64   `json:"id"`
	UID   string  `json:"uid"`
	Nome  string  `json:"nome"`
	Email string  `json:"email"`
	Cargo *string `json:"cargo,omitempty"`
}

// DepartamentoSessao é o departamento dentro da hierarquia da sessão.
type DepartamentoSessao struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
}

// FilialSessao é a filial com seus departamentos na hierarquia da sessão.
type FilialSessao struct {
	ID            int64                `json:"id"`
	Nome          string               `json:"nome"`
	Departamentos []DepartamentoSessao `json:"departamentos"`
}

// SessionPayload agrega a hierarquia filial/departamento do usuário.
type SessionPayload struct {
	Filiais []FilialSessao `json:"filiais"`
}

// LoginResult é o retorno completo do login.
type LoginResult struct {
	User         UsuarioSessao  `json:"user"`
	Token        string         `json:"token"`
	ExpiresAt    time.Time      `json:"expiresAt"`
	NeedsRefresh bool           `json:"needsRefresh"`
	Session      SessionPayload `json:"session"`
}

// Login autentica credenciais, carrega perfil e permissões e emite o token de
// sessão. Nenhum estado parcial é persistido: qualquer passo que falhe aborta.
func (s *AuthService) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	uid, err := s.provider.Authenticate(ctx, email, senha)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			log.Warn().Msg("login: credenciais rejeitadas pelo provedor")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	usuario, err := s.repo.GetUsuarioByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUsuarioNaoEncontrado
		}
		return nil, err
	}
	if !usuario.Status {
		return nil, ErrUsuarioInativo
	}

	tags, err := s.repo.ListPermissaoTagsByUsuario(ctx, usuario.ID)
	if err != nil {
		return nil, fmt.Errorf("permissões do usuário %d: %w", usuario.ID, err)
	}

	vinculos, err := s.repo.ListVinculosByUsuario(ctx, usuario.ID)
	if err != nil {
		return nil, fmt.Errorf("vínculos do usuário %d: %w", usuario.ID, err)
	}

	info, err := s.tokens.Create(auth.SessionData{
		UID:        usuario.UID.String(),
		Email:      usuario.Email,
		Nome:       usuario.Nome,
		Permissoes: tags,
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Add(ctx, info.Token, time.Until(info.ExpiresAt)); err != nil {
		return nil, fmt.Errorf("registrar sessão: %w", err)
	}

	return &LoginResult{
		User: UsuarioSessao{
			ID:    usuario.ID,
			UID:   usuario.UID.String(),
			Nome:  usuario.Nome,
			Email: usuario.Email,
			Cargo: usuario.Cargo,
		},
		Token:        info.Token,
		ExpiresAt:    info.ExpiresAt,
		NeedsRefresh: info.NeedsRefresh,
		Session:      buildSessionPayload(vinculos),
	}, nil
}

// Logout verifica o token, encerra a sessão no provedor e revoga o token local.
// Devolve o uid decodificado para confirmação.
func (s *AuthService) Logout(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}

	uid, err := uuid.Parse(claims.UID)
	if err != nil {
		return "", auth.ErrTokenInvalid
	}

	if err := s.provider.InvalidateSession(ctx, uid); err != nil && !errors.Is(err, identity.ErrIdentityNotFound) {
		return "", fmt.Errorf("encerrar sessão no provedor: %w", err)
	}

	if err := s.sessions.Remove(ctx, token); err != nil {
		return "", fmt.Errorf("revogar sessão local: %w", err)
	}

	return claims.UID, nil
}

// Refresh reemite o token quando ele está perto de expirar, substituindo a
// sessão antiga pela nova no store. Token fora do store (revogado por logout
// ou nunca emitido) não renova.
func (s *AuthService) Refresh(ctx context.Context, token string) (*auth.TokenInfo, error) {
	active, err := s.sessions.Has(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("consultar sessão: %w", err)
	}
	if !active {
		return nil, auth.ErrTokenInvalid
	}

	info, err := s.tokens.RefreshIfNeeded(token, nil)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrRefreshDesnecessario
	}

	if err := s.sessions.Add(ctx, info.Token, time.Until(info.ExpiresAt)); err != nil {
		return nil, fmt.Errorf("registrar sessão renovada: %w", err)
	}
	if err := s.sessions.Remove(ctx, token); err != nil {
		return nil, fmt.Errorf("revogar sessão anterior: %w", err)
	}

	return info, nil
}

// ForgotResult é a resposta neutra do esqueci-senha.
type ForgotResult struct {
	Message string `json:"message"`
}

// ForgotPassword cria a ação de redefinição e envia o e-mail com código e link.
// Para e-mail desconhecido a resposta é idêntica à de sucesso e nada é gerado,
// evitando vazar a existência da conta.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*ForgotResult, error) {
	neutral := &ForgotResult{Message: "se o e-mail estiver cadastrado, as instruções foram enviadas"}

	usuario, err := s.repo.GetUsuarioByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("esqueci-senha: e-mail não cadastrado")
			return neutral, nil
		}
		return nil, err
	}

	codigo, err := auth.GenerateResetCode()
	if err != nil {
		return nil, err
	}

	info, err := s.tokens.CreateWithTTL(auth.SessionData{
		UID:   usuario.UID.String(),
		Email: usuario.Email,
	}, s.resetTTL)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.CreateAcao(ctx, repo.CreateAcaoParams{
		UID:      usuario.UID,
		Tipo:     repo.AcaoResetPassword,
		Codigo:   codigo,
		Token:    info.Token,
		ExpiraEm: info.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("registrar ação de redefinição: %w", err)
	}

	link := fmt.Sprintf("%s/resetar-senha?token=%s", s.appBaseURL, info.Token)
	if err := s.mailer.SendPasswordReset(ctx, usuario.Email, usuario.Nome, codigo, link); err != nil {
		return nil, fmt.Errorf("enviar e-mail de redefinição: %w", err)
	}

	return neutral, nil
}

// ValidateResetToken confere a ação pelo token exato.
func (s *AuthService) ValidateResetToken(ctx context.Context, token string) (*repo.AcaoUsuario, error) {
	acao, err := s.repo.GetAcaoByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAcaoInvalida
		}
		return nil, err
	}
	return checkAcao(acao)
}

// ValidateResetCode confere a ação pelo par token+código.
func (s *AuthService) ValidateResetCode(ctx context.Context, token, codigo string) (*repo.AcaoUsuario, error) {
	acao, err := s.repo.GetAcaoByTokenCodigo(ctx, token, codigo)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAcaoInvalida
		}
		return nil, err
	}
	return checkAcao(acao)
}

// ResetPassword valida a tripla token+uid+código, troca a senha no provedor e
// consome a ação (uso único).
func (s *AuthService) ResetPassword(ctx context.Context, token string, uid uuid.UUID, codigo, novaSenha string) error {
	if err := util.ValidatePassword(novaSenha); err != nil {
		return err
	}

	acao, err := s.validateTriple(ctx, token, uid, codigo)
	if err != nil {
		return err
	}

	if err := s.provider.UpdatePassword(ctx, uid, novaSenha); err != nil {
		return fmt.Errorf("atualizar senha no provedor: %w", err)
	}

	return s.repo.ConsumeAcao(ctx, acao.ID)
}

// DefinePassword valida a tripla e provisiona uma identidade nova no provedor,
// religando o uid emitido ao usuário existente. A identidade anterior deixa de
// resolver para o perfil, tornando a credencial antiga inutilizável.
func (s *AuthService) DefinePassword(ctx context.Context, token string, uid uuid.UUID, codigo, novaSenha string) error {
	if err := util.ValidatePassword(novaSenha); err != nil {
		return err
	}

	acao, err := s.validateTriple(ctx, token, uid, codigo)
	if err != nil {
		return err
	}

	usuario, err := s.repo.GetUsuarioByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUsuarioNaoEncontrado
		}
		return err
	}

	novoUID, err := s.provider.SignUp(ctx, usuario.Email, novaSenha)
	if err != nil {
		return fmt.Errorf("provisionar identidade: %w", err)
	}

	if err := s.repo.UpdateUsuarioUID(ctx, usuario.ID, novoUID); err != nil {
		return fmt.Errorf("religar identidade ao usuário %d: %w", usuario.ID, err)
	}

	return s.repo.ConsumeAcao(ctx, acao.ID)
}

func (s *AuthService) validateTriple(ctx context.Context, token string, uid uuid.UUID, codigo string) (*repo.AcaoUsuario, error) {
	acao, err := s.repo.GetAcaoByTokenUIDCodigo(ctx, token, uid, codigo)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAcaoInvalida
		}
		return nil, err
	}
	return checkAcao(acao)
}

// checkAcao aplica a taxonomia de validação: expiração vence status.
func checkAcao(acao repo.AcaoUsuario) (*repo.AcaoUsuario, error) {
	if time.Now().After(acao.ExpiraEm) {
		return nil, ErrAcaoExpirada
	}
	if !acao.Status {
		return nil, ErrAcaoUtilizada
	}
	return &acao, nil
}

// buildSessionPayload agrupa vínculos planos em filiais com departamentos.
func buildSessionPayload(vinculos []repo.VinculoUsuario) SessionPayload {
	payload := SessionPayload{Filiais: []FilialSessao{}}
	index := make(map[int64]int)

	for _, v := range vinculos {
		pos, ok := index[v.FilialID]
		if !ok {
			payload.Filiais = append(payload.Filiais, FilialSessao{
				ID:            v.FilialID,
				Nome:          v.FilialNome,
				Departamentos: []DepartamentoSessao{},
			})
			pos = len(payload.Filiais) - 1
			index[v.FilialID] = pos
		}

		if v.DepartamentoID == nil {
			continue
		}

		dup := false
		for _, d := range payload.Filiais[pos].Departamentos {
			if d.ID == *v.DepartamentoID {
				dup = true
				break
			}
		}
		if !dup {
			nome := ""
			if v.DepartamentoNome != nil {
				nome = *v.DepartamentoNome
			}
			payload.Filiais[pos].Departamentos = append(payload.Filiais[pos].Departamentos, DepartamentoSessao{
				ID:   *v.DepartamentoID,
				Nome: nome,
			})
		}
	}

	return payload
}
