// Package usuario gerencia os perfis de colaboradores de uma empresa.
package usuario

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica usuário inexistente.
	ErrNotFound = errors.New("usuário não encontrado")
	// ErrEmailExiste indica e-mail já cadastrado em outro perfil.
	ErrEmailExiste = errors.New("e-mail já cadastrado")
)

// Usuario representa o perfil do colaborador. O UID liga o perfil à
// identidade emitida pelo provedor de credenciais.
type Usuario struct {
	ID        int64     `json:"id"`
	UID       uuid.UUID `json:"uid"`
	Nome      string    `json:"nome"`
	Email     string    `json:"email"`
	Telefone  *string   `json:"telefone"`
	Cargo     *string   `json:"cargo"`
	IDEmpresa int64     `json:"id_empresa"`
	Status    bool      `json:"status"`
	CriadoEm  time.Time `json:"criado_em"`
}

// Permissao é a permissão atribuída ao usuário, com a tag usada nos claims.
type Permissao struct {
	ID  int64  `json:"id"`
	Tag string `json:"tag"`
}

// CreateInput contém os campos para cadastrar um usuário.
type CreateInput struct {
	Nome      string
	Email     string
	Telefone  *string
	Cargo     *string
	IDEmpresa int64
}

// UpdateInput contém os campos alteráveis do perfil.
type UpdateInput struct {
	ID       int64
	Nome     string
	Telefone *string
	Cargo    *string
	Status   bool
}
