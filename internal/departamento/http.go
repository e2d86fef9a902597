package departamento

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler orquestra as rotas de departamentos.
type Handler struct {
	service *Service
}

// NewHandler cria o handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registra as rotas autenticadas de departamentos.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/departamentos", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleInactivate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filialID, err := strconv.ParseInt(r.URL.Query().Get("id_filial"), 10, 64)
	if err != nil || filialID <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id_filial obrigatório")
		return
	}

	departamentos, err := h.service.ListByFilial(r.Context(), filialID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"departamentos": departamentos})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "departamento não encontrado")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDFilial int64  `json:"id_filial"`
		Nome     string `json:"nome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	d, err := h.service.Create(r.Context(), CreateInput{IDFilial: body.IDFilial, Nome: body.Nome})
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var body struct {
		Nome   string `json:"nome"`
		Status *bool  `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	status := true
	if body.Status != nil {
		status = *body.Status
	}

	d, err := h.service.Update(r.Context(), UpdateInput{ID: id, Nome: body.Nome, Status: status})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "departamento não encontrado")
			return
		}
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) handleInactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	if err := h.service.Inactivate(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "departamento não encontrado")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "departamento inativado"})
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

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("erro interno no módulo departamentos")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
}
