package filial

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler orquestra as rotas de filiais.
type Handler struct {
	service *Service
}

// NewHandler cria o handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registra as rotas autenticadas de filiais.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/filiais", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleInactivate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	empresaID, err := strconv.ParseInt(r.URL.Query().Get("id_empresa"), 10, 64)
	if err != nil || empresaID <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id_empresa obrigatório")
		return
	}

	filiais, err := h.service.ListByEmpresa(r.Context(), empresaID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filiais": filiais})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	f, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "filial não encontrada")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDEmpresa int64   `json:"id_empresa"`
		Nome      string  `json:"nome"`
		Cidade    *string `json:"cidade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	f, err := h.service.Create(r.Context(), CreateInput{IDEmpresa: body.IDEmpresa, Nome: body.Nome, Cidade: body.Cidade})
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var body struct {
		Nome   string  `json:"nome"`
		Cidade *string `json:"cidade"`
		Status *bool   `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	status := true
	if body.Status != nil {
		status = *body.Status
	}

	f, err := h.service.Update(r.Context(), UpdateInput{ID: id, Nome: body.Nome, Cidade: body.Cidade, Status: status})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "filial não encontrada")
			return
		}
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) handleInactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	if err := h.service.Inactivate(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "filial não encontrada")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "filial inativada"})
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
	log.Error().Err(err).Msg("erro interno no módulo filiais")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
}
