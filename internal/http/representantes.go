package http

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

// vinculoBody é o corpo comum de criação/atualização de vínculos.
type vinculoBody struct {
	IDUsuario       int64 `json:"id_usuario"`
	IDEntidade      int64 `json:"id_entidade"`
	IsRepresentante bool  `json:"is_representante"`
}

// registerVinculoRoutes registra as rotas de vínculos usuário↔departamento e
// usuário↔filial no subtree autenticado.
func (h *Handler) registerVinculoRoutes(r chi.Router) {
	r.Route("/usuarios-departamentos", func(r chi.Router) {
		r.Get("/", h.ListUsuariosDepartamentos)
		r.Post("/", h.CreateUsuarioDepartamento)
		r.Put("/", h.UpdateUsuarioDepartamento)
		r.Get("/representantes/{id}", h.ListRepresentantesDepartamento)
		r.Delete("/{idUsuario}/{idDepartamento}", h.DeleteUsuarioDepartamento)
	})

	r.Route("/usuarios-filiais", func(r chi.Router) {
		r.Get("/", h.ListUsuariosFiliais)
		r.Post("/", h.CreateUsuarioFilial)
		r.Put("/", h.UpdateUsuarioFilial)
		r.Get("/representantes/{id}", h.ListRepresentantesFilial)
		r.Delete("/{idUsuario}/{idFilial}", h.DeleteUsuarioFilial)
	})
}

// ListUsuariosDepartamentos lista os vínculos, com filtro opcional por
// departamento.
func (h *Handler) ListUsuariosDepartamentos(w http.ResponseWriter, r *http.Request) {
	filtro, ok := optionalQueryID(w, r, "id_departamento")
	if !ok {
		return
	}

	vinculos, err := h.usuarioDepartamentos.List(r.Context(), filtro)
	if err != nil {
		writeVinculoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"vinculos": vinculos})
}

// ListRepresentantesDepartamento lista os representantes ativos do departamento.
func (h *Handler) ListRepresentantesDepartamento(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	vinculos, err := h.usuarioDepartamentos.ListRepresentantes(r.Context(), id)
	if err != nil {
		writeVinculoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"representantes": vinculos})
}

// CreateUsuarioDepartamento registra o vínculo usuário↔departamento.
func (h *Handler) CreateUsuarioDepartamento(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeVinculoBody(w, r)
	if !ok {
		return
	}

	err := h.usuarioDepartamentos.Create(r.Context(), repo.UsuarioDepartamento{
		IDUsuario:       body.IDUsuario,
		IDDepartamento:  body.IDEntidade,
		IsRepresentante: body.IsRepresentante,
	})
	if err != nil {
		writeVinculoError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"message": "vínculo criado"})
}

// UpdateUsuarioDepartamento alterna o papel de representante do vínculo.
func (h *Handler) UpdateUsuarioDepartamento(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeVinculoBody(w, r)
	if !ok {
		return
	}

	err := h.usuarioDepartamentos.Update(r.Context(), repo.UsuarioDepartamento{
		IDUsuario:       body.IDUsuario,
		IDDepartamento:  body.IDEntidade,
		IsRepresentante: body.IsRepresentante,
	})
	if err != nil {
		writeVinculoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "vínculo atualizado"})
}

// DeleteUsuarioDepartamento remove o vínculo e ajusta as permissões.
func (h *Handler) DeleteUsuarioDepartamento(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := pathID(w, r, "idUsuario")
	if !ok {
		return
	}
	departamentoID, ok := pathID(w, r, "idDepartamento")
	if !ok {
		return
	}

	if err := h.usuarioDepartamentos.Delete(r.Context(), usuarioID, departamentoID); err != nil {
		writeVinculoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "vínculo removido"})
}

// ListUsuariosFiliais lista os vínculos, com filtro opcional por filial.
func (h *Handler) ListUsuariosFiliais(w http.ResponseWriter, r *http.Request) {
	filtro, ok := optionalQueryID(w, r, "id_filial")
	if !ok {
		return
	}

	vinculos, err := h.usuarioFiliais.List(r.Context(), filtro)
	if err != nil {
		writeVinculoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"vinculos": vinculos})
}

// ListRepresentantesFilial lista os representantes ativos da filial.
func (h *Handler) ListRepresentantesFilial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	vinculos, err := h.usuarioFiliais.ListRepresentantes(r.Context(), id)
	if err != nil {
		writeVinculoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"representantes": vinculos})
}

// CreateUsuarioFilial registra o vínculo usuário↔filial.
func (h *Handler) CreateUsuarioFilial(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeVinculoBody(w, r)
	if !ok {
		return
	}

	err := h.usuarioFiliais.Create(r.Context(), repo.UsuarioFilial{
		IDUsuario:       body.IDUsuario,
		IDFilial:        body.IDEntidade,
		IsRepresentante: body.IsRepresentante,
	})
	if err != nil {
		writeVinculoError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"message": "vínculo criado"})
}

// UpdateUsuarioFilial alterna o papel de representante do vínculo.
func (h *Handler) UpdateUsuarioFilial(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeVinculoBody(w, r)
	if !ok {
		return
	}

	err := h.usuarioFiliais.Update(r.Context(), repo.UsuarioFilial{
		IDUsuario:       body.IDUsuario,
		IDFilial:        body.IDEntidade,
		IsRepresentante: body.IsRepresentante,
	})
	if err != nil {
		writeVinculoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "vínculo atualizado"})
}

// DeleteUsuarioFilial remove o vínculo e ajusta as permissões.
func (h *Handler) DeleteUsuarioFilial(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := pathID(w, r, "idUsuario")
	if !ok {
		return
	}
	filialID, ok := pathID(w, r, "idFilial")
	if !ok {
		return
	}

	if err := h.usuarioFiliais.Delete(r.Context(), usuarioID, filialID); err != nil {
		writeVinculoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"message": "vínculo removido"})
}

func decodeVinculoBody(w http.ResponseWriter, r *http.Request) (vinculoBody, bool) {
	var body vinculoBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return body, false
	}
	if body.IDUsuario <= 0 || body.IDEntidade <= 0 {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id_usuario e id_entidade obrigatórios", nil)
		return body, false
	}
	return body, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", name+" inválido", nil)
		return 0, false
	}
	return id, true
}

func optionalQueryID(w http.ResponseWriter, r *http.Request, name string) (*int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", name+" inválido", nil)
		return nil, false
	}
	return &id, true
}

// writeVinculoError segue o contrato dos endpoints de vínculo: ausência é
// respondida com 400, não 404.
func writeVinculoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrVinculoExistente):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, service.ErrVinculoNaoEncontrado):
		WriteError(w, http.StatusBadRequest, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusBadRequest, "NOT_FOUND", err.Error(), nil)
	default:
		log.Error().Err(err).Msg("erro interno nos vínculos de representante")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}
