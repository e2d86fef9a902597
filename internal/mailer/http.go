package mailer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler expõe a consulta do histórico de envios.
type Handler struct {
	logs *Repository
}

// NewHandler cria o handler.
func NewHandler(logs *Repository) *Handler {
	return &Handler{logs: logs}
}

// RegisterRoutes registra as rotas autenticadas do histórico de e-mails.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/email-logs", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	logs, err := h.logs.List(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("listar histórico de e-mails falhou")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"email_logs": logs})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "error": nil})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":  nil,
		"error": map[string]any{"code": code, "message": message},
	})
}
