package cliente

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/bemestar/internal/util"
)

// Handler orquestra a rota de onboarding de clientes.
type Handler struct {
	service *Service
}

// NewHandler cria o handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registra as rotas autenticadas de clientes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/clientes", h.handleOnboard)
}

func (h *Handler) handleOnboard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Empresa struct {
			Nome string  `json:"nome"`
			CNPJ *string `json:"cnpj"`
		} `json:"empresa"`
		Admin struct {
			Nome     string  `json:"nome"`
			Email    string  `json:"email"`
			Telefone *string `json:"telefone"`
			Cargo    *string `json:"cargo"`
		} `json:"admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido")
		return
	}

	result, err := h.service.Onboard(r.Context(), OnboardInput{
		EmpresaNome:   body.Empresa.Nome,
		CNPJ:          body.Empresa.CNPJ,
		AdminNome:     body.Admin.Nome,
		AdminEmail:    body.Admin.Email,
		AdminTelefone: body.Admin.Telefone,
		AdminCargo:    body.Admin.Cargo,
	})
	if err != nil {
		if errors.Is(err, ErrEmailExiste) {
			writeError(w, http.StatusConflict, "CONFLICT", err.Error())
			return
		}
		var invalid util.ValidationError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
			return
		}
		log.Error().Err(err).Msg("onboarding de cliente falhou")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
		return
	}

	writeJSON(w, http.StatusCreated, result)
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
