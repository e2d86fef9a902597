package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitaltrack/bemestar/internal/repo"
)

var (
	// ErrVinculoExistente indica que o par usuário/entidade já está vinculado.
	ErrVinculoExistente = errors.New("vínculo já existente")
	// ErrVinculoNaoEncontrado indica vínculo inexistente para update/delete.
	ErrVinculoNaoEncontrado = errors.New("vínculo não encontrado")
)

type vinculoRepository interface {
	GetUsuarioByID(ctx context.Context, id int64) (repo.Usuario, error)

	GetUsuarioDepartamento(ctx context.Context, usuarioID, departamentoID int64) (repo.UsuarioDepartamento, error)
	ListUsuariosDepartamentos(ctx context.Context, departamentoID *int64) ([]repo.UsuarioDepartamento, error)
	ListRepresentantesDepartamento(ctx context.Context, departamentoID int64) ([]repo.UsuarioDepartamento, error)
	InsertUsuarioDepartamento(ctx context.Context, v repo.UsuarioDepartamento) error
	UpdateUsuarioDepartamento(ctx context.Context, v repo.UsuarioDepartamento) error
	DeleteUsuarioDepartamento(ctx context.Context, usuarioID, departamentoID int64) error

	GetUsuarioFilial(ctx context.Context, usuarioID, filialID int64) (repo.UsuarioFilial, error)
	ListUsuariosFiliais(ctx context.Context, filialID *int64) ([]repo.UsuarioFilial, error)
	ListRepresentantesFilial(ctx context.Context, filialID int64) ([]repo.UsuarioFilial, error)
	InsertUsuarioFilial(ctx context.Context, v repo.UsuarioFilial) error
	UpdateUsuarioFilial(ctx context.Context, v repo.UsuarioFilial) error
	DeleteUsuarioFilial(ctx context.Context, usuarioID, filialID int64) error

	GetRepresentanteEmpresa(ctx context.Context, usuarioID, empresaID int64) (repo.RepresentanteEmpresa, error)
	ListRepresentantesEmpresa(ctx context.Context, empresaID int64) ([]repo.RepresentanteEmpresa, error)
	InsertRepresentanteEmpresa(ctx context.Context, v repo.RepresentanteEmpresa) error
	UpdateRepresentanteEmpresa(ctx context.Context, v repo.RepresentanteEmpresa) error
	DeleteRepresentanteEmpresa(ctx context.Context, usuarioID, empresaID int64) error
}

// UsuarioDepartamentoService gerencia o vínculo usuário ⇄ departamento e a
// propagação de permissões quando o papel de representante muda.
type UsuarioDepartamentoService struct {
	repo       vinculoRepository
	permissoes *PermissaoService
}

// NewUsuarioDepartamentoService cria o serviço.
func NewUsuarioDepartamentoService(repo vinculoRepository, permissoes *PermissaoService) *UsuarioDepartamentoService {
	return &UsuarioDepartamentoService{repo: repo, permissoes: permissoes}
}

// List devolve os vínculos, opcionalmente filtrados por departamento.
func (s *UsuarioDepartamentoService) List(ctx context.Context, departamentoID *int64) ([]repo.UsuarioDepartamento, error) {
	return s.repo.ListUsuariosDepartamentos(ctx, departamentoID)
}

// ListRepresentantes devolve os representantes ativos de um departamento.
func (s *UsuarioDepartamentoService) ListRepresentantes(ctx context.Context, departamentoID int64) ([]repo.UsuarioDepartamento, error) {
	return s.repo.ListRepresentantesDepartamento(ctx, departamentoID)
}

// Create registra o vínculo. Falha se o par já existir; quando o vínculo nasce
// como representante, concede as permissões do tipo departamento.
func (s *UsuarioDepartamentoService) Create(ctx context.Context, v repo.UsuarioDepartamento) error {
	_, err := s.repo.GetUsuarioDepartamento(ctx, v.IDUsuario, v.IDDepartamento)
	if err == nil {
		return ErrVinculoExistente
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	if err := s.repo.InsertUsuarioDepartamento(ctx, v); err != nil {
		return fmt.Errorf("criar vínculo usuário/departamento: %w", err)
	}

	if v.IsRepresentante {
		return s.grant(ctx, v.IDUsuario)
	}
	return nil
}

// Update alterna o papel de representante do vínculo existente. Rebaixar o
// papel dispara a poda de permissões; promover concede o conjunto do tipo.
func (s *UsuarioDepartamentoService) Update(ctx context.Context, v repo.UsuarioDepartamento) error {
	atual, err := s.repo.GetUsuarioDepartamento(ctx, v.IDUsuario, v.IDDepartamento)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrVinculoNaoEncontrado
		}
		return err
	}

	if err := s.repo.UpdateUsuarioDepartamento(ctx, v); err != nil {
		return fmt.Errorf("atualizar vínculo usuário/departamento: %w", err)
	}

	switch {
	case !atual.IsRepresentante && v.IsRepresentante:
		return s.grant(ctx, v.IDUsuario)
	case atual.IsRepresentante && !v.IsRepresentante:
		// o vínculo já foi rebaixado; o cálculo de permissões requeridas vê o estado novo
		return s.permissoes.ManagePermissoesAposRemocao(ctx, v.IDUsuario, TipoRepDepartamento)
	}
	return nil
}

// Delete remove fisicamente o vínculo e poda permissões se ele era representante.
func (s *UsuarioDepartamentoService) Delete(ctx context.Context, usuarioID, departamentoID int64) error {
	atual, err := s.repo.GetUsuarioDepartamento(ctx, usuarioID, departamentoID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrVinculoNaoEncontrado
		}
		return err
	}

	if err := s.repo.DeleteUsuarioDepartamento(ctx, usuarioID, departamentoID); err != nil {
		return fmt.Errorf("remover vínculo usuário/departamento: %w", err)
	}

	if atual.IsRepresentante {
		return s.permissoes.ManagePermissoesAposRemocao(ctx, usuarioID, TipoRepDepartamento)
	}
	return nil
}

func (s *UsuarioDepartamentoService) grant(ctx context.Context, usuarioID int64) error {
	usuario, err := s.repo.GetUsuarioByID(ctx, usuarioID)
	if err != nil {
		return err
	}
	return s.permissoes.AddPermissoesRepresentante(ctx, usuarioID, usuario.UID, TipoRepDepartamento)
}
