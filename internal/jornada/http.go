package jornada

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler orquestra as rotas de jornadas, perguntas e dashboard.
type Handler struct {
	service *Service
}

// NewHandler cria o handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registra as rotas autenticadas do módulo.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jornadas", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdateRelato)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/concluir", h.handleConcluir)
		r.Get("/{id}/respostas", h.handleRespostas)
		r.Put("/{id}/respostas/{idPergunta}", h.handleResponder)
		r.Delete("/{id}/respostas/{idPergunta}", h.handleRemoverResposta)
	})

	r.Route("/perguntas", func(r chi.Router) {
		r.Get("/", h.handleListPerguntas)
		r.Post("/", h.handleCreatePergunta)
		r.Get("/{id}", h.handleGetPergunta)
		r.Put("/{id}", h.handleUpdatePergunta)
		r.Delete("/{id}", h.handleInactivatePergunta)
	})

	r.Get("/dashboard", h.handleDashboard)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	usuarioID, err := strconv.ParseInt(r.URL.Query().Get("id_usuario"), 10, 64)
	if err != nil || usuarioID <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id_usuario obrigatório")
		return
	}

	jornadas, err := h.service.ListByUsuario(r.Context(), usuarioID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jornadas": jornadas})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}

	j, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeJornadaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDUsuario int64  `json:"id_usuario"`
		Relato    string `json:"relato"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	j, err := h.service.Create(r.Context(), body.IDUsuario, body.Relato)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

func (h *Handler) handleUpdateRelato(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		Relato string `json:"relato"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	j, err := h.service.UpdateRelato(r.Context(), id, body.Relato)
	if err != nil {
		writeJornadaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeJornadaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "jornada removida"})
}

func (h *Handler) handleConcluir(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}

	j, err := h.service.Concluir(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAnaliseIndisponivel) {
			log.Error().Err(err).Int64("jornada", id).Msg("análise indisponível na conclusão")
			writeError(w, http.StatusBadGateway, "UPSTREAM", "serviço de análise indisponível")
			return
		}
		writeJornadaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *Handler) handleRespostas(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}

	respostas, err := h.service.Respostas(r.Context(), id)
	if err != nil {
		writeJornadaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"respostas": respostas})
}

func (h *Handler) handleResponder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	perguntaID, ok := parseParam(w, r, "idPergunta")
	if !ok {
		return
	}

	var body struct {
		Resposta string `json:"resposta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	if err := h.service.Responder(r.Context(), id, perguntaID, body.Resposta); err != nil {
		writeJornadaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "resposta registrada"})
}

func (h *Handler) handleRemoverResposta(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	perguntaID, ok := parseParam(w, r, "idPergunta")
	if !ok {
		return
	}

	if err := h.service.RemoverResposta(r.Context(), id, perguntaID); err != nil {
		writeJornadaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "resposta removida"})
}

func (h *Handler) handleListPerguntas(w http.ResponseWriter, r *http.Request) {
	perguntas, err := h.service.ListPerguntas(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"perguntas": perguntas})
}

func (h *Handler) handleGetPergunta(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.service.GetPergunta(r.Context(), id)
	if err != nil {
		writeJornadaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleCreatePergunta(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Texto string `json:"texto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	p, err := h.service.CreatePergunta(r.Context(), body.Texto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleUpdatePergunta(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		Texto  string `json:"texto"`
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

	p, err := h.service.UpdatePergunta(r.Context(), id, body.Texto, status)
	if err != nil {
		writeJornadaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleInactivatePergunta(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.InactivatePergunta(r.Context(), id); err != nil {
		writeJornadaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "pergunta inativada"})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	empresaID, err := strconv.ParseInt(q.Get("id_empresa"), 10, 64)
	if err != nil || empresaID <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id_empresa obrigatório")
		return
	}

	filtro := DashboardFiltro{IDEmpresa: empresaID}

	if raw := q.Get("id_filial"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "id_filial inválido")
			return
		}
		filtro.IDFilial = &v
	}
	if raw := q.Get("id_departamento"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "id_departamento inválido")
			return
		}
		filtro.IDDepartamento = &v
	}
	if raw := q.Get("inicio"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "inicio inválido (use AAAA-MM-DD)")
			return
		}
		filtro.Inicio = t
	}
	if raw := q.Get("fim"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "fim inválido (use AAAA-MM-DD)")
			return
		}
		// Fim inclusivo: o recorte vai até o fim do dia informado.
		filtro.Fim = t.AddDate(0, 0, 1)
	}

	resumo, err := h.service.Dashboard(r.Context(), filtro)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resumo)
}

func parseParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", name+" inválido")
		return 0, false
	}
	return id, true
}

func writeJornadaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "jornada não encontrada")
	case errors.Is(err, ErrPerguntaNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "pergunta não encontrada")
	case errors.Is(err, ErrJornadaConcluida):
		writeError(w, http.StatusConflict, "CONFLICT", "jornada já concluída")
	default:
		writeInternalError(w, err)
	}
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
	log.Error().Err(err).Msg("erro interno no módulo jornadas")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
}
