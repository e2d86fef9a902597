package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitaltrack/bemestar/internal/repo"
)

// RepresentanteEmpresaService gerencia o vínculo usuário ⇄ empresa como
// representante, com propagação de permissões sobre o tipo empresa.
type RepresentanteEmpresaService struct {
	repo       vinculoRepository
	permissoes *PermissaoService
}

// NewRepresentanteEmpresaService cria o serviço.
func NewRepresentanteEmpresaService(repo vinculoRepository, permissoes *PermissaoService) *RepresentanteEmpresaService {
	return &RepresentanteEmpresaService{repo: repo, permissoes: permissoes}
}

// List devolve os representantes ativos de uma empresa.
func (s *RepresentanteEmpresaService) List(ctx context.Context, empresaID int64) ([]repo.RepresentanteEmpresa, error) {
	return s.repo.ListRepresentantesEmpresa(ctx, empresaID)
}

// Create registra o vínculo, falhando se o par já existir.
func (s *RepresentanteEmpresaService) Create(ctx context.Context, v repo.RepresentanteEmpresa) error {
	_, err := s.repo.GetRepresentanteEmpresa(ctx, v.IDUsuario, v.IDEmpresa)
	if err == nil {
		return ErrVinculoExistente
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	if err := s.repo.InsertRepresentanteEmpresa(ctx, v); err != nil {
		return fmt.Errorf("criar representante de empresa: %w", err)
	}

	if v.IsRepresentante {
		return s.grant(ctx, v.IDUsuario)
	}
	return nil
}

// Update alterna o papel de representante do vínculo existente.
func (s *RepresentanteEmpresaService) Update(ctx context.Context, v repo.RepresentanteEmpresa) error {
	atual, err := s.repo.GetRepresentanteEmpresa(ctx, v.IDUsuario, v.IDEmpresa)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrVinculoNaoEncontrado
		}
		return err
	}

	if err := s.repo.UpdateRepresentanteEmpresa(ctx, v); err != nil {
		return fmt.Errorf("atualizar representante de empresa: %w", err)
	}

	switch {
	case !atual.IsRepresentante && v.IsRepresentante:
		return s.grant(ctx, v.IDUsuario)
	case atual.IsRepresentante && !v.IsRepresentante:
		return s.permissoes.ManagePermissoesAposRemocao(ctx, v.IDUsuario, TipoRepEmpresa)
	}
	return nil
}

// Delete remove fisicamente o vínculo e poda permissões se ele era representante.
func (s *RepresentanteEmpresaService) Delete(ctx context.Context, usuarioID, empresaID int64) error {
	atual, err := s.repo.GetRepresentanteEmpresa(ctx, usuarioID, empresaID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrVinculoNaoEncontrado
		}
		return err
	}

	if err := s.repo.DeleteRepresentanteEmpresa(ctx, usuarioID, empresaID); err != nil {
		return fmt.Errorf("remover representante de empresa: %w", err)
	}

	if atual.IsRepresentante {
		return s.permissoes.ManagePermissoesAposRemocao(ctx, usuarioID, TipoRepEmpresa)
	}
	return nil
}

func (s *RepresentanteEmpresaService) grant(ctx context.Context, usuarioID int64) error {
	usuario, err := s.repo.GetUsuarioByID(ctx, usuarioID)
	if err != nil {
		return err
	}
	return s.permissoes.AddPermissoesRepresentante(ctx, usuarioID, usuario.UID, TipoRepEmpresa)
}
