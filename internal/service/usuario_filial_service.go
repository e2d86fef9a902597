package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitaltrack/bemestar/internal/repo"
)

// UsuarioFilialService gerencia o vínculo usuário ⇄ filial com a mesma
// propagação de permissões do serviço de departamentos, sobre o tipo filial.
type UsuarioFilialService struct {
	repo       vinculoRepository
	permissoes *PermissaoService
}

// NewUsuarioFilialService cria o serviço.
func NewUsuarioFilialService(repo vinculoRepository, permissoes *PermissaoService) *UsuarioFilialService {
	return &UsuarioFilialService{repo: repo, permissoes: permissoes}
}

// List devolve os vínculos, opcionalmente filtrados por filial.
func (s *UsuarioFilialService) List(ctx context.Context, filialID *int64) ([]repo.UsuarioFilial, error) {
	return s.repo.ListUsuariosFiliais(ctx, filialID)
}

// ListRepresentantes devolve os representantes ativos de uma filial.
func (s *UsuarioFilialService) ListRepresentantes(ctx context.Context, filialID int64) ([]repo.UsuarioFilial, error) {
	return s.repo.ListRepresentantesFilial(ctx, filialID)
}

// Create registra o vínculo, falhando se o par já existir.
func (s *UsuarioFilialService) Create(ctx context.Context, v repo.UsuarioFilial) error {
	_, err := s.repo.GetUsuarioFilial(ctx, v.IDUsuario, v.IDFilial)
	if err == nil {
		return ErrVinculoExistente
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	if err := s.repo.InsertUsuarioFilial(ctx, v); err != nil {
		return fmt.Errorf("criar vínculo usuário/filial: %w", err)
	}

	if v.IsRepresentante {
		return s.grant(ctx, v.IDUsuario)
	}
	return nil
}

// Update alterna o papel de representante do vínculo existente.
func (s *UsuarioFilialService) Update(ctx context.Context, v repo.UsuarioFilial) error {
	atual, err := s.repo.GetUsuarioFilial(ctx, v.IDUsuario, v.IDFilial)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrVinculoNaoEncontrado
		}
		return err
	}

	if err := s.repo.UpdateUsuarioFilial(ctx, v); err != nil {
		return fmt.Errorf("atualizar vínculo usuário/filial: %w", err)
	}

	switch {
	case !atual.IsRepresentante && v.IsRepresentante:
		return s.grant(ctx, v.IDUsuario)
	case atual.IsRepresentante && !v.IsRepresentante:
		return s.permissoes.ManagePermissoesAposRemocao(ctx, v.IDUsuario, TipoRepFilial)
	}
	return nil
}

// Delete remove fisicamente o vínculo e poda permissões se ele era representante.
func (s *UsuarioFilialService) Delete(ctx context.Context, usuarioID, filialID int64) error {
	atual, err := s.repo.GetUsuarioFilial(ctx, usuarioID, filialID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrVinculoNaoEncontrado
		}
		return err
	}

	if err := s.repo.DeleteUsuarioFilial(ctx, usuarioID, filialID); err != nil {
		return fmt.Errorf("remover vínculo usuário/filial: %w", err)
	}

	if atual.IsRepresentante {
		return s.permissoes.ManagePermissoesAposRemocao(ctx, usuarioID, TipoRepFilial)
	}
	return nil
}

func (s *UsuarioFilialService) grant(ctx context.Context, usuarioID int64) error {
	usuario, err := s.repo.GetUsuarioByID(ctx, usuarioID)
	if err != nil {
		return err
	}
	return s.permissoes.AddPermissoesRepresentante(ctx, usuarioID, usuario.UID, TipoRepFilial)
}
