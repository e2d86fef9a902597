package repo

import (
	"time"

	"github.com/google/uuid"
)

// Usuario representa colaborador de uma empresa cliente.
type Usuario struct {
	ID        int64
	UID       uuid.UUID
	Nome      string
	Email     string
	Telefone  *string
	Cargo     *string
	IDEmpresa *int64
	Status    bool
	CriadoEm  time.Time
}

// Permissao é uma permissão do catálogo, com etiqueta legível.
type Permissao struct {
	ID        int64
	Tag       string
	Descricao string
}

// UsuarioPermissao vincula usuário a uma permissão do catálogo.
type UsuarioPermissao struct {
	IDUser      int64
	IDPermissao int64
	UID         uuid.UUID
}

// AcaoUsuario é o registro de uso único que conduz redefinição/definição de senha.
type AcaoUsuario struct {
	ID       int64
	UID      uuid.UUID
	Tipo     string
	Codigo   string
	Token    string
	Status   bool
	ExpiraEm time.Time
	CriadoEm time.Time
}

// Tipos de ação suportados.
const (
	AcaoResetPassword  = "reset_password"
	AcaoDefinePassword = "define_password"
)

// UsuarioDepartamento vincula usuário a um departamento.
type UsuarioDepartamento struct {
	IDUsuario       int64
	IDDepartamento  int64
	IsRepresentante bool
}

// UsuarioFilial vincula usuário a uma filial.
type UsuarioFilial struct {
	IDUsuario       int64
	IDFilial        int64
	IsRepresentante bool
}

// RepresentanteEmpresa vincula usuário como representante da empresa.
type RepresentanteEmpresa struct {
	IDUsuario       int64
	IDEmpresa       int64
	IsRepresentante bool
}

// VinculoUsuario agrega filial e departamento de um usuário para o payload de sessão.
type VinculoUsuario struct {
	FilialID         int64
	FilialNome       string
	DepartamentoID   *int64
	DepartamentoNome *string
}
