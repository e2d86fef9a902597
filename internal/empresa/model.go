package empresa

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indica empresa inexistente.
	ErrNotFound = errors.New("empresa não encontrada")
)

// Empresa representa uma empresa cliente da plataforma.
type Empresa struct {
	ID        int64     `json:"id"`
	Nome      string    `json:"nome"`
	CNPJ      *string   `json:"cnpj,omitempty"`
	Status    bool      `json:"status"`
	CriadoEm  time.Time `json:"criado_em"`
}

// CreateInput contém os campos para cadastrar uma empresa.
type CreateInput struct {
	Nome string
	CNPJ *string
}

// UpdateInput contém os campos alteráveis de uma empresa.
type UpdateInput struct {
	ID     int64
	Nome   string
	CNPJ   *string
	Status bool
}
