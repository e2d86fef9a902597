package empresa

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/bemestar/internal/repo"
	"github.com/vitaltrack/bemestar/internal/service"
)

// Handler orquestra as rotas de empresas e seus representantes.
type Handler struct {
	service        *Service
	representantes *service.RepresentanteEmpresaService
}

// NewHandler cria o handler.
func NewHandler(svc *Service, representantes *service.RepresentanteEmpresaService) *Handler {
	return &Handler{service: svc, representantes: representantes}
}

// RegisterRoutes registra as rotas autenticadas de empresas.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/empresas", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleInactivate)

		r.Get("/{id}/representantes", h.handleListRepresentantes)
		r.Post("/{id}/representantes", h.handleCreateRepresentante)
		r.Put("/{id}/representantes", h.handleUpdateRepresentante)
		r.Delete("/{id}/representantes/{idUsuario}", h.handleDeleteRepresentante)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	empresas, err := h.service.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"empresas": empresas})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "empresa não encontrada")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nome string  `json:"nome"`
		CNPJ *string `json:"cnpj"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	e, err := h.service.Create(r.Context(), CreateInput{Nome: body.Nome, CNPJ: body.CNPJ})
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var body struct {
		Nome   string  `json:"nome"`
		CNPJ   *string `json:"cnpj"`
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

	e, err := h.service.Update(r.Context(), UpdateInput{ID: id, Nome: body.Nome, CNPJ: body.CNPJ, Status: status})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "empresa não encontrada")
			return
		}
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) handleInactivate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	if err := h.service.Inactivate(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "empresa não encontrada")
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "empresa inativada"})
}

func (h *Handler) handleListRepresentantes(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	vinculos, err := h.representantes.List(r.Context(), id)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"representantes": vinculos})
}

func (h *Handler) handleCreateRepresentante(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var body struct {
		IDUsuario       int64 `json:"id_usuario"`
		IsRepresentante bool  `json:"is_representante"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IDUsuario == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	err = h.representantes.Create(r.Context(), repo.RepresentanteEmpresa{
		IDUsuario:       body.IDUsuario,
		IDEmpresa:       id,
		IsRepresentante: body.IsRepresentante,
	})
	if err != nil {
		writeVinculoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "representante vinculado"})
}

func (h *Handler) handleUpdateRepresentante(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var body struct {
		IDUsuario       int64 `json:"id_usuario"`
		IsRepresentante bool  `json:"is_representante"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IDUsuario == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	err = h.representantes.Update(r.Context(), repo.RepresentanteEmpresa{
		IDUsuario:       body.IDUsuario,
		IDEmpresa:       id,
		IsRepresentante: body.IsRepresentante,
	})
	if err != nil {
		writeVinculoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "representante atualizado"})
}

func (h *Handler) handleDeleteRepresentante(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}
	idUsuario, err := parseID(r, "idUsuario")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "idUsuario inválido")
		return
	}

	if err := h.representantes.Delete(r.Context(), idUsuario, id); err != nil {
		writeVinculoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "representante removido"})
}

func writeVinculoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrVinculoExistente):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, service.ErrVinculoNaoEncontrado):
		writeError(w, http.StatusBadRequest, "NOT_FOUND", err.Error())
	default:
		writeInternalError(w, err)
	}
}

func parseID(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
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
	log.Error().Err(err).Msg("erro interno no módulo empresas")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
}
