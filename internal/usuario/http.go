package usuario

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler orquestra as rotas de usuários.
type Handler struct {
	service *Service
}

// NewHandler cria o handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registra as rotas autenticadas de usuários.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/usuarios", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleInactivate)
		r.Get("/{id}/permissoes", h.handlePermissoes)
		r.Post("/{id}/convite", h.handleReenviarConvite)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	empresaID, err := strconv.ParseInt(r.URL.Query().Get("id_empresa"), 10, 64)
	if err != nil || empresaID <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id_empresa obrigatório")
		return
	}

	usuarios, err := h.service.ListByEmpresa(r.Context(), empresaID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"usuarios": usuarios})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeUsuarioError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nome      string  `json:"nome"`
		Email     string  `json:"email"`
		Telefone  *string `json:"telefone"`
		Cargo     *string `json:"cargo"`
		IDEmpresa int64   `json:"id_empresa"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	u, err := h.service.Create(r.Context(), CreateInput{
		Nome:      body.Nome,
		Email:     body.Email,
		Telefone:  body.Telefone,
		Cargo:     body.Cargo,
		IDEmpresa: body.IDEmpresa,
	})
	if err != nil {
		if errors.Is(err, ErrEmailExiste) {
			writeError(w, http.StatusConflict, "CONFLICT", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var body struct {
		Nome     string  `json:"nome"`
		Telefone *string `json:"telefone"`
		Cargo    *string `json:"cargo"`
		Status   *bool   `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	status := true
	if body.Status != nil {
		status = *body.Status
	}

	u, err := h.service.Update(r.Context(), UpdateInput{
		ID:       id,
		Nome:     body.Nome,
		Telefone: body.Telefone,
		Cargo:    body.Cargo,
		Status:   status,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "usuário não encontrado")
			return
		}
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) handleInactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Inactivate(r.Context(), id); err != nil {
		writeUsuarioError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "usuário inativado"})
}

func (h *Handler) handlePermissoes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	permissoes, err := h.service.ListPermissoes(r.Context(), id)
	if err != nil {
		writeUsuarioError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"permissoes": permissoes})
}

func (h *Handler) handleReenviarConvite(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.ReenviarConvite(r.Context(), id); err != nil {
		writeUsuarioError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "convite reenviado"})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return 0, false
	}
	return id, true
}

func writeUsuarioError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "usuário não encontrado")
		return
	}
	writeInternalError(w, err)
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
	log.Error().Err(err).Msg("erro interno no módulo usuários")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
}
