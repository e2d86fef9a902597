package http

import (
	"context"
	"net/http"
	"time"

	httpmiddleware "github.com/vitaltrack/bemestar/internal/http/middleware"
)

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// Ready verifica as dependências de runtime.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "banco indisponível", nil)
		return
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "redis indisponível", nil)
			return
		}
	}

	WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// Me devolve os claims da sessão autenticada.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := httpmiddleware.GetClaims(r.Context())
	if claims == nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"uid":        claims.UID,
		"email":      claims.Email,
		"nome":       claims.Nome,
		"permissoes": claims.Permissoes,
	})
}
