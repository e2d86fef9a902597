package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/bemestar/internal/auth"
	"github.com/vitaltrack/bemestar/internal/service"
	"github.com/vitaltrack/bemestar/internal/util"
)

// Login autentica e devolve token, perfil e hierarquia da sessão.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}
	if err := util.ValidateEmail(body.Email); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	if body.Senha == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "senha obrigatória", nil)
		return
	}

	result, err := h.authService.Login(r.Context(), body.Email, body.Senha)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// Logout revoga a sessão do token apresentado.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(w, r)
	if !ok {
		return
	}

	uid, err := h.authService.Logout(r.Context(), token)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"uid": uid, "message": "sessão encerrada"})
}

// Refresh reemite o token quando ele está dentro da janela de renovação.
// O token vem do corpo {refresh_token} ou, na ausência dele, do header Bearer.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := refreshTokenFromRequest(r)
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "AUTH", "token ausente", nil)
		return
	}

	info, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"token":     info.Token,
		"expiresAt": info.ExpiresAt,
	})
}

// ForgotPassword inicia o fluxo de redefinição. A resposta não revela se o
// e-mail existe.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}
	if err := util.ValidateEmail(body.Email); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	result, err := h.authService.ForgotPassword(r.Context(), body.Email)
	if err != nil {
		log.Error().Err(err).Msg("esqueci-senha falhou")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// ValidateReset confere a validade da ação de redefinição pelo token, com
// código opcional.
func (h *Handler) ValidateReset(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "token obrigatório", nil)
		return
	}

	var err error
	if codigo := strings.TrimSpace(r.URL.Query().Get("codigo")); codigo != "" {
		_, err = h.authService.ValidateResetCode(r.Context(), token, codigo)
	} else {
		_, err = h.authService.ValidateResetToken(r.Context(), token)
	}
	if err != nil {
		writeAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"valido": true})
}

// ResetPassword troca a senha a partir de uma ação de redefinição válida.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token, uid, codigo, senha, ok := decodePasswordBody(w, r)
	if !ok {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), token, uid, codigo, senha); err != nil {
		writeAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"message": "senha redefinida"})
}

// DefinePassword conclui o primeiro acesso: cria a credencial e religa a
// identidade nova ao perfil.
func (h *Handler) DefinePassword(w http.ResponseWriter, r *http.Request) {
	token, uid, codigo, senha, ok := decodePasswordBody(w, r)
	if !ok {
		return
	}

	if err := h.authService.DefinePassword(r.Context(), token, uid, codigo, senha); err != nil {
		writeAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"message": "senha definida"})
}

func decodePasswordBody(w http.ResponseWriter, r *http.Request) (token string, uid uuid.UUID, codigo, senha string, ok bool) {
	var body struct {
		Token  string `json:"token"`
		UID    string `json:"uid"`
		Codigo string `json:"codigo"`
		Senha  string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return "", uuid.Nil, "", "", false
	}

	if strings.TrimSpace(body.Token) == "" || strings.TrimSpace(body.Codigo) == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "token e código obrigatórios", nil)
		return "", uuid.Nil, "", "", false
	}

	parsed, err := uuid.Parse(body.UID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "uid inválido", nil)
		return "", uuid.Nil, "", "", false
	}

	return body.Token, parsed, body.Codigo, body.Senha, true
}

func refreshTokenFromRequest(r *http.Request) string {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	if token := strings.TrimSpace(body.RefreshToken); token != "" {
		return token
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func bearerToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		WriteError(w, http.StatusUnauthorized, "AUTH", "token ausente", nil)
		return "", false
	}
	return parts[1], true
}

func writeAuthError(w http.ResponseWriter, err error) {
	var invalid util.ValidationError

	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUsuarioNaoEncontrado),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenExpired):
		WriteError(w, http.StatusUnauthorized, "AUTH", "credenciais ou token inválidos", nil)
	case errors.Is(err, service.ErrUsuarioInativo):
		WriteError(w, http.StatusUnauthorized, "AUTH", "usuário inativo", nil)
	case errors.Is(err, service.ErrRefreshDesnecessario):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, service.ErrAcaoInvalida),
		errors.Is(err, service.ErrAcaoExpirada),
		errors.Is(err, service.ErrAcaoUtilizada):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.As(err, &invalid):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		log.Error().Err(err).Msg("erro interno no fluxo de autenticação")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}
