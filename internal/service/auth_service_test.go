package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vitaltrack/bemestar/internal/auth"
	"github.com/vitaltrack/bemestar/internal/identity"
	"github.com/vitaltrack/bemestar/internal/repo"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubAuthRepo struct {
	usuarios map[string]repo.Usuario // chave: e-mail
	acoes    []repo.AcaoUsuario
	tags     map[int64][]string
	vinculos map[int64][]repo.VinculoUsuario
	nextID   int64
	relinked map[int64]uuid.UUID
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		usuarios: make(map[string]repo.Usuario),
		tags:     make(map[int64][]string),
		vinculos: make(map[int64][]repo.VinculoUsuario),
		relinked: make(map[int64]uuid.UUID),
	}
}

func (s *stubAuthRepo) addUsuario(u repo.Usuario) {
	s.usuarios[u.Email] = u
}

func (s *stubAuthRepo) GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error) {
	u, ok := s.usuarios[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return repo.Usuario{}, repo.ErrNotFound
	}
	return u, nil
}

func (s *stubAuthRepo) GetUsuarioByUID(ctx context.Context, uid uuid.UUID) (repo.Usuario, error) {
	for _, u := range s.usuarios {
		if u.UID == uid {
			return u, nil
		}
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) GetUsuarioByID(ctx context.Context, id int64) (repo.Usuario, error) {
	for _, u := range s.usuarios {
		if u.ID == id {
			return u, nil
		}
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) UpdateUsuarioUID(ctx context.Context, id int64, uid uuid.UUID) error {
	for email, u := range s.usuarios {
		if u.ID == id {
			u.UID = uid
			s.usuarios[email] = u
			s.relinked[id] = uid
			return nil
		}
	}
	return repo.ErrNotFound
}

func (s *stubAuthRepo) ListPermissaoTagsByUsuario(ctx context.Context, usuarioID int64) ([]string, error) {
	return s.tags[usuarioID], nil
}

func (s *stubAuthRepo) ListVinculosByUsuario(ctx context.Context, usuarioID int64) ([]repo.VinculoUsuario, error) {
	return s.vinculos[usuarioID], nil
}

func (s *stubAuthRepo) CreateAcao(ctx context.Context, arg repo.CreateAcaoParams) (repo.AcaoUsuario, error) {
	s.nextID++
	acao := repo.AcaoUsuario{
		ID:       s.nextID,
		UID:      arg.UID,
		Tipo:     arg.Tipo,
		Codigo:   arg.Codigo,
		Token:    arg.Token,
		Status:   true,
		ExpiraEm: arg.ExpiraEm,
		CriadoEm: time.Now(),
	}
	s.acoes = append(s.acoes, acao)
	return acao, nil
}

func (s *stubAuthRepo) GetAcaoByToken(ctx context.Context, token string) (repo.AcaoUsuario, error) {
	for _, a := range s.acoes {
		if a.Token == token {
			return a, nil
		}
	}
	return repo.AcaoUsuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) GetAcaoByTokenCodigo(ctx context.Context, token, codigo string) (repo.AcaoUsuario, error) {
	for _, a := range s.acoes {
		if a.Token == token && a.Codigo == codigo {
			return a, nil
		}
	}
	return repo.AcaoUsuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) GetAcaoByTokenUIDCodigo(ctx context.Context, token string, uid uuid.UUID, codigo string) (repo.AcaoUsuario, error) {
	for _, a := range s.acoes {
		if a.Token == token && a.UID == uid && a.Codigo == codigo {
			return a, nil
		}
	}
	return repo.AcaoUsuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) ConsumeAcao(ctx context.Context, id int64) error {
	for i, a := range s.acoes {
		if a.ID == id && a.Status {
			s.acoes[i].Status = false
			return nil
		}
	}
	return repo.ErrNotFound
}

type stubProvider struct {
	credenciais   map[string]string // e-mail → senha
	uids          map[string]uuid.UUID
	updated       map[uuid.UUID]string
	invalidated   []uuid.UUID
	signUpsEmails []string
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		credenciais: make(map[string]string),
		uids:        make(map[string]uuid.UUID),
		updated:     make(map[uuid.UUID]string),
	}
}

func (p *stubProvider) add(email, senha string, uid uuid.UUID) {
	p.credenciais[email] = senha
	p.uids[email] = uid
}

func (p *stubProvider) Authenticate(ctx context.Context, email, senha string) (uuid.UUID, error) {
	if senha == "" || p.credenciais[email] != senha {
		return uuid.Nil, identity.ErrInvalidCredentials
	}
	return p.uids[email], nil
}

func (p *stubProvider) SignUp(ctx context.Context, email, senha string) (uuid.UUID, error) {
	uid := uuid.New()
	p.signUpsEmails = append(p.signUpsEmails, email)
	p.add(email, senha, uid)
	return uid, nil
}

func (p *stubProvider) UpdatePassword(ctx context.Context, uid uuid.UUID, senha string) error {
	p.updated[uid] = senha
	return nil
}

func (p *stubProvider) InvalidateSession(ctx context.Context, uid uuid.UUID) error {
	p.invalidated = append(p.invalidated, uid)
	return nil
}

type stubMailer struct {
	enviados []string // códigos enviados
	links    []string
}

func (m *stubMailer) SendPasswordReset(ctx context.Context, destinatario, nome, codigo, link string) error {
	m.enviados = append(m.enviados, codigo)
	m.links = append(m.links, link)
	return nil
}

func newAuthFixture() (*AuthService, *stubAuthRepo, *stubProvider, *stubMailer) {
	store := newStubAuthRepo()
	provider := newStubProvider()
	mails := &stubMailer{}
	tokens := auth.NewTokenManager(testSecret, 2*time.Hour)
	sessions := auth.NewMemorySessionStore()
	svc := NewAuthService(store, provider, tokens, sessions, mails, 15*time.Minute, "https://app.vitaltrack.com.br")
	return svc, store, provider, mails
}

func seedUsuario(store *stubAuthRepo, provider *stubProvider, ativo bool) repo.Usuario {
	uid := uuid.New()
	u := repo.Usuario{
		ID:     1,
		UID:    uid,
		Nome:   "Ana Souza",
		Email:  "ana@empresa.com.br",
		Status: ativo,
	}
	store.addUsuario(u)
	provider.add(u.Email, "senha-forte", uid)
	return u
}

func TestLoginSucesso(t *testing.T) {
	svc, store, provider, _ := newAuthFixture()
	u := seedUsuario(store, provider, true)
	store.tags[u.ID] = []string{"dashboard", "relatorios"}
	dep := int64(7)
	depNome := "Financeiro"
	store.vinculos[u.ID] = []repo.VinculoUsuario{
		{FilialID: 3, FilialNome: "Matriz", DepartamentoID: &dep, DepartamentoNome: &depNome},
		{FilialID: 3, FilialNome: "Matriz", DepartamentoID: nil},
	}

	result, err := svc.Login(context.Background(), u.Email, "senha-forte")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.Tokens().Verify(result.Token)
	if err != nil {
		t.Fatalf("token emitido inválido: %v", err)
	}
	if claims.UID != u.UID.String() || claims.Nome != u.Nome {
		t.Fatalf("claims divergentes: %+v", claims)
	}
	if len(claims.Permissoes) != 2 {
		t.Fatalf("permissões no token: %v", claims.Permissoes)
	}

	ativo, err := svc.Sessions().Has(context.Background(), result.Token)
	if err != nil || !ativo {
		t.Fatalf("sessão deveria estar registrada no store (ativo=%v, err=%v)", ativo, err)
	}

	if len(result.Session.Filiais) != 1 {
		t.Fatalf("hierarquia da sessão: %+v", result.Session)
	}
	filial := result.Session.Filiais[0]
	if filial.ID != 3 || len(filial.Departamentos) != 1 || filial.Departamentos[0].ID != 7 {
		t.Fatalf("filial da sessão: %+v", filial)
	}
}

func TestLoginCredenciaisInvalidas(t *testing.T) {
	svc, store, provider, _ := newAuthFixture()
	u := seedUsuario(store, provider, true)

	_, err := svc.Login(context.Background(), u.Email, "senha-errada")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperado ErrInvalidCredentials, veio %v", err)
	}
}

func TestLoginUsuarioInativo(t *testing.T) {
	svc, store, provider, _ := newAuthFixture()
	u := seedUsuario(store, provider, false)

	_, err := svc.Login(context.Background(), u.Email, "senha-forte")
	if !errors.Is(err, ErrUsuarioInativo) {
		t.Fatalf("esperado ErrUsuarioInativo, veio %v", err)
	}
}

func TestLogoutRevogaSessao(t *testing.T) {
	svc, store, provider, _ := newAuthFixture()
	u := seedUsuario(store, provider, true)

	result, err := svc.Login(context.Background(), u.Email, "senha-forte")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	uid, err := svc.Logout(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if uid != u.UID.String() {
		t.Fatalf("uid devolvido: %s", uid)
	}

	ativo, _ := svc.Sessions().Has(context.Background(), result.Token)
	if ativo {
		t.Fatal("sessão deveria ter sido revogada")
	}
	if len(provider.invalidated) != 1 || provider.invalidated[0] != u.UID {
		t.Fatalf("provedor não invalidado: %v", provider.invalidated)
	}
}

func TestRefreshTokenAindaValido(t *testing.T) {
	svc, store, provider, _ := newAuthFixture()
	u := seedUsuario(store, provider, true)

	result, err := svc.Login(context.Background(), u.Email, "senha-forte")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), result.Token)
	if !errors.Is(err, ErrRefreshDesnecessario) {
		t.Fatalf("token de 2h não deveria renovar: %v", err)
	}
}

func TestRefreshTokenRevogadoNaoRenova(t *testing.T) {
	store := newStubAuthRepo()
	provider := newStubProvider()
	// TTL dentro da janela de renovação: sem revogação o token renovaria
	tokens := auth.NewTokenManager(testSecret, 4*time.Minute)
	sessions := auth.NewMemorySessionStore()
	svc := NewAuthService(store, provider, tokens, sessions, &stubMailer{}, 15*time.Minute, "https://app.vitaltrack.com.br")
	u := seedUsuario(store, provider, true)

	result, err := svc.Login(context.Background(), u.Email, "senha-forte")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	info, err := svc.Refresh(context.Background(), result.Token)
	if !errors.Is(err, auth.ErrTokenInvalid) {
		t.Fatalf("token revogado deveria falhar com ErrTokenInvalid, veio %v", err)
	}
	if info != nil {
		t.Fatalf("nenhum token novo deveria ser emitido: %+v", info)
	}
}

func TestRefreshSubstituiSessao(t *testing.T) {
	store := newStubAuthRepo()
	provider := newStubProvider()
	tokens := auth.NewTokenManager(testSecret, 4*time.Minute)
	sessions := auth.NewMemorySessionStore()
	svc := NewAuthService(store, provider, tokens, sessions, &stubMailer{}, 15*time.Minute, "https://app.vitaltrack.com.br")
	u := seedUsuario(store, provider, true)

	result, err := svc.Login(context.Background(), u.Email, "senha-forte")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	info, err := svc.Refresh(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("renovar: %v", err)
	}

	ativo, _ := sessions.Has(context.Background(), info.Token)
	if !ativo {
		t.Fatal("sessão nova deveria estar registrada")
	}
	ativo, _ = sessions.Has(context.Background(), result.Token)
	if ativo {
		t.Fatal("sessão antiga deveria ter sido substituída")
	}
}

func TestForgotPasswordEmailDesconhecido(t *testing.T) {
	svc, store, _, mails := newAuthFixture()

	result, err := svc.ForgotPassword(context.Background(), "ninguem@empresa.com.br")
	if err != nil {
		t.Fatalf("resposta deveria ser neutra: %v", err)
	}
	if result.Message == "" {
		t.Fatal("mensagem neutra vazia")
	}
	if len(store.acoes) != 0 {
		t.Fatalf("nenhuma ação deveria ser criada: %d", len(store.acoes))
	}
	if len(mails.enviados) != 0 {
		t.Fatalf("nenhum e-mail deveria sair: %d", len(mails.enviados))
	}
}

func TestForgotPasswordCriaAcao(t *testing.T) {
	svc, store, provider, mails := newAuthFixture()
	u := seedUsuario(store, provider, true)

	if _, err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("esqueci-senha: %v", err)
	}

	if len(store.acoes) != 1 {
		t.Fatalf("ações criadas: %d", len(store.acoes))
	}
	acao := store.acoes[0]
	if acao.Tipo != repo.AcaoResetPassword {
		t.Fatalf("tipo da ação: %s", acao.Tipo)
	}
	if len(acao.Codigo) != 8 {
		t.Fatalf("código deveria ter 8 caracteres: %q", acao.Codigo)
	}
	if !acao.ExpiraEm.After(time.Now().Add(10 * time.Minute)) {
		t.Fatalf("expiração curta demais: %v", acao.ExpiraEm)
	}
	if len(mails.enviados) != 1 || mails.enviados[0] != acao.Codigo {
		t.Fatalf("código enviado diverge do registrado: %v", mails.enviados)
	}
}

func TestResetPasswordUsoUnico(t *testing.T) {
	svc, store, provider, _ := newAuthFixture()
	u := seedUsuario(store, provider, true)

	if _, err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("esqueci-senha: %v", err)
	}
	acao := store.acoes[0]

	err := svc.ResetPassword(context.Background(), acao.Token, u.UID, acao.Codigo, "senha-nova-123")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if provider.updated[u.UID] != "senha-nova-123" {
		t.Fatal("senha não foi trocada no provedor")
	}

	err = svc.ResetPassword(context.Background(), acao.Token, u.UID, acao.Codigo, "senha-nova-456")
	if !errors.Is(err, ErrAcaoUtilizada) {
		t.Fatalf("segundo uso deveria falhar com ErrAcaoUtilizada: %v", err)
	}
}

func TestResetPasswordTriplaErrada(t *testing.T) {
	svc, store, provider, _ := newAuthFixture()
	u := seedUsuario(store, provider, true)

	if _, err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("esqueci-senha: %v", err)
	}
	acao := store.acoes[0]

	err := svc.ResetPassword(context.Background(), acao.Token, uuid.New(), acao.Codigo, "senha-nova-123")
	if !errors.Is(err, ErrAcaoInvalida) {
		t.Fatalf("uid errado deveria dar ErrAcaoInvalida: %v", err)
	}
}

func TestAcaoExpiradaVenceStatus(t *testing.T) {
	svc, store, provider, _ := newAuthFixture()
	u := seedUsuario(store, provider, true)

	// Ação expirada e já consumida: a expiração tem precedência na taxonomia.
	store.acoes = append(store.acoes, repo.AcaoUsuario{
		ID:       99,
		UID:      u.UID,
		Tipo:     repo.AcaoResetPassword,
		Codigo:   "deadbeef",
		Token:    "token-antigo",
		Status:   false,
		ExpiraEm: time.Now().Add(-time.Hour),
	})

	_, err := svc.ValidateResetToken(context.Background(), "token-antigo")
	if !errors.Is(err, ErrAcaoExpirada) {
		t.Fatalf("esperado ErrAcaoExpirada, veio %v", err)
	}
}

func TestValidateResetCode(t *testing.T) {
	svc, store, provider, _ := newAuthFixture()
	u := seedUsuario(store, provider, true)

	if _, err := svc.ForgotPassword(context.Background(), u.Email); err != nil {
		t.Fatalf("esqueci-senha: %v", err)
	}
	acao := store.acoes[0]

	if _, err := svc.ValidateResetCode(context.Background(), acao.Token, acao.Codigo); err != nil {
		t.Fatalf("validação por código: %v", err)
	}
	if _, err := svc.ValidateResetCode(context.Background(), acao.Token, "00000000"); !errors.Is(err, ErrAcaoInvalida) {
		t.Fatalf("código errado deveria dar ErrAcaoInvalida: %v", err)
	}
}

func TestDefinePasswordReligaIdentidade(t *testing.T) {
	svc, store, provider, _ := newAuthFixture()
	u := seedUsuario(store, provider, true)

	acao, err := store.CreateAcao(context.Background(), repo.CreateAcaoParams{
		UID:      u.UID,
		Tipo:     repo.AcaoDefinePassword,
		Codigo:   "cafe1234",
		Token:    "token-convite",
		ExpiraEm: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("criar ação: %v", err)
	}

	if err := svc.DefinePassword(context.Background(), acao.Token, u.UID, acao.Codigo, "senha-definida"); err != nil {
		t.Fatalf("definir senha: %v", err)
	}

	novoUID, ok := store.relinked[u.ID]
	if !ok {
		t.Fatal("uid não foi religado ao perfil")
	}
	if novoUID == u.UID {
		t.Fatal("identidade nova deveria ter uid diferente")
	}
	if len(provider.signUpsEmails) != 1 || provider.signUpsEmails[0] != u.Email {
		t.Fatalf("provisionamento no provedor: %v", provider.signUpsEmails)
	}
}

func TestResetPasswordSenhaFraca(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	err := svc.ResetPassword(context.Background(), "tok", uuid.New(), "cod", "curta")
	if err == nil {
		t.Fatal("senha curta deveria falhar na validação")
	}
}
