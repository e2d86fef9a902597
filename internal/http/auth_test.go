package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vitaltrack/bemestar/internal/auth"
	"github.com/vitaltrack/bemestar/internal/identity"
	"github.com/vitaltrack/bemestar/internal/repo"
	"github.com/vitaltrack/bemestar/internal/service"
)

// fakeAuthStore implementa o contrato de repositório do AuthService em memória,
// com um único usuário semeado.
type fakeAuthStore struct {
	usuario repo.Usuario
	acoes   []repo.AcaoUsuario
}

func (f *fakeAuthStore) GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error) {
	if strings.EqualFold(email, f.usuario.Email) {
		return f.usuario, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (f *fakeAuthStore) GetUsuarioByUID(ctx context.Context, uid uuid.UUID) (repo.Usuario, error) {
	if uid == f.usuario.UID {
		return f.usuario, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (f *fakeAuthStore) GetUsuarioByID(ctx context.Context, id int64) (repo.Usuario, error) {
	if id == f.usuario.ID {
		return f.usuario, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (f *fakeAuthStore) UpdateUsuarioUID(ctx context.Context, id int64, uid uuid.UUID) error {
	f.usuario.UID = uid
	return nil
}

func (f *fakeAuthStore) ListPermissaoTagsByUsuario(ctx context.Context, usuarioID int64) ([]string, error) {
	return []string{"dashboard"}, nil
}

func (f *fakeAuthStore) ListVinculosByUsuario(ctx context.Context, usuarioID int64) ([]repo.VinculoUsuario, error) {
	return nil, nil
}

func (f *fakeAuthStore) CreateAcao(ctx context.Context, arg repo.CreateAcaoParams) (repo.AcaoUsuario, error) {
	acao := repo.AcaoUsuario{
		ID:       int64(len(f.acoes) + 1),
		UID:      arg.UID,
		Tipo:     arg.Tipo,
		Codigo:   arg.Codigo,
		Token:    arg.Token,
		Status:   true,
		ExpiraEm: arg.ExpiraEm,
		CriadoEm: time.Now(),
	}
	f.acoes = append(f.acoes, acao)
	return acao, nil
}

func (f *fakeAuthStore) GetAcaoByToken(ctx context.Context, token string) (repo.AcaoUsuario, error) {
	for _, a := range f.acoes {
		if a.Token == token {
			return a, nil
		}
	}
	return repo.AcaoUsuario{}, repo.ErrNotFound
}

func (f *fakeAuthStore) GetAcaoByTokenCodigo(ctx context.Context, token, codigo string) (repo.AcaoUsuario, error) {
	for _, a := range f.acoes {
		if a.Token == token && a.Codigo == codigo {
			return a, nil
		}
	}
	return repo.AcaoUsuario{}, repo.ErrNotFound
}

func (f *fakeAuthStore) GetAcaoByTokenUIDCodigo(ctx context.Context, token string, uid uuid.UUID, codigo string) (repo.AcaoUsuario, error) {
	for _, a := range f.acoes {
		if a.Token == token && a.UID == uid && a.Codigo == codigo {
			return a, nil
		}
	}
	return repo.AcaoUsuario{}, repo.ErrNotFound
}

func (f *fakeAuthStore) ConsumeAcao(ctx context.Context, id int64) error {
	for i, a := range f.acoes {
		if a.ID == id {
			f.acoes[i].Status = false
			return nil
		}
	}
	return repo.ErrNotFound
}

type fakeProvider struct {
	email string
	senha string
	uid   uuid.UUID
}

func (p *fakeProvider) Authenticate(ctx context.Context, email, senha string) (uuid.UUID, error) {
	if strings.EqualFold(email, p.email) && senha == p.senha {
		return p.uid, nil
	}
	return uuid.Nil, identity.ErrInvalidCredentials
}

func (p *fakeProvider) SignUp(ctx context.Context, email, senha string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (p *fakeProvider) UpdatePassword(ctx context.Context, uid uuid.UUID, senha string) error {
	return nil
}

func (p *fakeProvider) InvalidateSession(ctx context.Context, uid uuid.UUID) error {
	return nil
}

type fakeResetMailer struct{}

func (fakeResetMailer) SendPasswordReset(ctx context.Context, destinatario, nome, codigo, link string) error {
	return nil
}

func newTestHandler() *Handler {
	return newTestHandlerTTL(time.Hour)
}

func newTestHandlerTTL(ttl time.Duration) *Handler {
	uid := uuid.New()
	store := &fakeAuthStore{usuario: repo.Usuario{
		ID:     1,
		UID:    uid,
		Nome:   "Clara Mendes",
		Email:  "clara@empresa.com.br",
		Status: true,
	}}
	provider := &fakeProvider{email: "clara@empresa.com.br", senha: "senha-forte", uid: uid}
	tokens := auth.NewTokenManager("0123456789abcdef0123456789abcdef", ttl)
	sessions := auth.NewMemorySessionStore()
	svc := service.NewAuthService(store, provider, tokens, sessions, fakeResetMailer{}, 15*time.Minute, "https://app.vitaltrack.com.br")
	return &Handler{authService: svc}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (map[string]any, map[string]any) {
	t.Helper()
	var env struct {
		Data  map[string]any `json:"data"`
		Error map[string]any `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("resposta não é envelope JSON: %v", err)
	}
	return env.Data, env.Error
}

func TestLoginEndpointSucesso(t *testing.T) {
	h := newTestHandler()

	body := `{"email":"clara@empresa.com.br","senha":"senha-forte"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, corpo: %s", rec.Code, rec.Body.String())
	}
	data, errBody := decodeEnvelope(t, rec)
	if errBody != nil {
		t.Fatalf("erro inesperado no envelope: %v", errBody)
	}
	if data["token"] == "" || data["token"] == nil {
		t.Fatalf("token ausente no payload: %v", data)
	}
}

func TestLoginEndpointCredenciaisInvalidas(t *testing.T) {
	h := newTestHandler()

	body := `{"email":"clara@empresa.com.br","senha":"errada"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d", rec.Code)
	}
	_, errBody := decodeEnvelope(t, rec)
	if errBody == nil || errBody["code"] != "AUTH" {
		t.Fatalf("envelope de erro: %v", errBody)
	}
}

func TestLoginEndpointEmailInvalido(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"sem-arroba","senha":"x"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rec.Code)
	}
	_, errBody := decodeEnvelope(t, rec)
	if errBody == nil || errBody["code"] != "VALIDATION" {
		t.Fatalf("envelope de erro: %v", errBody)
	}
}

func loginToken(t *testing.T, h *Handler) string {
	t.Helper()
	body := `{"email":"clara@empresa.com.br","senha":"senha-forte"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d, corpo %s", rec.Code, rec.Body.String())
	}
	data, _ := decodeEnvelope(t, rec)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatalf("token ausente no login: %v", data)
	}
	return token
}

func TestRefreshEndpointCorpoJSON(t *testing.T) {
	// TTL dentro da janela de renovação para o refresh acontecer de fato
	h := newTestHandlerTTL(4 * time.Minute)
	token := loginToken(t, h)

	body := `{"refresh_token":"` + token + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, corpo: %s", rec.Code, rec.Body.String())
	}
	data, errBody := decodeEnvelope(t, rec)
	if errBody != nil {
		t.Fatalf("erro inesperado: %v", errBody)
	}
	novo, _ := data["token"].(string)
	if novo == "" || novo == token {
		t.Fatalf("token renovado esperado no payload: %v", data)
	}
}

func TestRefreshEndpointHeaderBearer(t *testing.T) {
	h := newTestHandlerTTL(4 * time.Minute)
	token := loginToken(t, h)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, corpo: %s", rec.Code, rec.Body.String())
	}
}

func TestRefreshEndpointSemToken(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestRefreshEndpointTokenRevogado(t *testing.T) {
	h := newTestHandlerTTL(4 * time.Minute)
	token := loginToken(t, h)

	logoutReq := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	logoutReq.Header.Set("Authorization", "Bearer "+token)
	logoutRec := httptest.NewRecorder()
	h.Logout(logoutRec, logoutReq)
	if logoutRec.Code != http.StatusOK {
		t.Fatalf("logout: status %d", logoutRec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"`+token+`"}`))
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("token revogado não deveria renovar: status %d, corpo %s", rec.Code, rec.Body.String())
	}
	_, errBody := decodeEnvelope(t, rec)
	if errBody == nil || errBody["code"] != "AUTH" {
		t.Fatalf("envelope de erro: %v", errBody)
	}
}

func TestLogoutEndpointSemBearer(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestValidateResetEndpointSemToken(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/auth/resetar-senha/validar", nil)
	rec := httptest.NewRecorder()
	h.ValidateReset(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestResetPasswordEndpointUIDInvalido(t *testing.T) {
	h := newTestHandler()

	body := `{"token":"abc","uid":"nao-e-uuid","codigo":"12345678","senha":"senha-nova-123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/resetar-senha", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ResetPassword(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rec.Code)
	}
	_, errBody := decodeEnvelope(t, rec)
	if errBody == nil || errBody["code"] != "VALIDATION" {
		t.Fatalf("envelope de erro: %v", errBody)
	}
}
