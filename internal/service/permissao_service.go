package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Tipos de representante reconhecidos pela plataforma.
const (
	TipoRepDepartamento = "rep_departamento"
	TipoRepFilial       = "rep_filial"
	TipoRepEmpresa      = "rep_empresa"
)

// ErrTipoRepresentante indica tipo de representante fora do conjunto fechado.
var ErrTipoRepresentante = errors.New("tipo de representante desconhecido")

// permissoesPorTipo é o mapeamento fechado tipo → permissões exigidas.
// Os conjuntos se sobrepõem de propósito: 1 e 4 aparecem nos três tipos,
// então a remoção de um papel só pode retirar o que nenhum outro papel exige.
var permissoesPorTipo = map[string][]int64{
	TipoRepDepartamento: {1, 4, 6},
	TipoRepFilial:       {1, 3, 4, 5},
	TipoRepEmpresa:      {1, 2, 3, 4, 9},
}

// permissoesCliente é o conjunto fixo concedido no onboarding de cliente.
var permissoesCliente = []int64{1, 2, 3, 4, 5, 6, 9}

type permissaoRepository interface {
	ListPermissaoIDsByUsuario(ctx context.Context, usuarioID int64) ([]int64, error)
	InsertUsuarioPermissao(ctx context.Context, usuarioID, permissaoID int64, uid uuid.UUID) error
	DeleteUsuarioPermissoes(ctx context.Context, usuarioID int64, permissaoIDs []int64) error
	HasRepresentanteEmpresa(ctx context.Context, usuarioID int64) (bool, error)
	HasRepresentanteFilial(ctx context.Context, usuarioID int64) (bool, error)
	HasRepresentanteDepartamento(ctx context.Context, usuarioID int64) (bool, error)
}

// PermissaoService deriva o conjunto de permissões de um usuário a partir dos
// papéis de representante que ele mantém.
type PermissaoService struct {
	repo permissaoRepository
}

// NewPermissaoService cria o serviço.
func NewPermissaoService(repo permissaoRepository) *PermissaoService {
	return &PermissaoService{repo: repo}
}

// PermissoesDoTipo devolve o conjunto exigido por um tipo de representante.
func PermissoesDoTipo(tipo string) ([]int64, error) {
	perms, ok := permissoesPorTipo[tipo]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTipoRepresentante, tipo)
	}
	out := make([]int64, len(perms))
	copy(out, perms)
	return out, nil
}

// AddPermissoesRepresentante concede ao usuário as permissões exigidas pelo tipo.
// Idempotente: calcula a diferença contra o que já existe e o índice único
// (id_user, id_permissao) absorve corridas entre requisições concorrentes.
func (s *PermissaoService) AddPermissoesRepresentante(ctx context.Context, usuarioID int64, uid uuid.UUID, tipo string) error {
	exigidas, err := PermissoesDoTipo(tipo)
	if err != nil {
		return err
	}

	atuais, err := s.repo.ListPermissaoIDsByUsuario(ctx, usuarioID)
	if err != nil {
		return fmt.Errorf("permissões atuais do usuário %d: %w", usuarioID, err)
	}

	faltantes := diff(exigidas, atuais)
	for _, id := range faltantes {
		if err := s.repo.InsertUsuarioPermissao(ctx, usuarioID, id, uid); err != nil {
			return fmt.Errorf("atribuir permissão %d ao usuário %d: %w", id, usuarioID, err)
		}
	}

	return nil
}

// GetPermissoesRequeridas calcula a união das permissões exigidas pelos papéis
// que o usuário ainda mantém ativos. Uma permissão sobrevive se e somente se
// algum papel ativo a exigir.
func (s *PermissaoService) GetPermissoesRequeridas(ctx context.Context, usuarioID int64) ([]int64, error) {
	requeridas := make(map[int64]struct{})

	empresa, err := s.repo.HasRepresentanteEmpresa(ctx, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("papéis de empresa do usuário %d: %w", usuarioID, err)
	}
	if empresa {
		for _, id := range permissoesPorTipo[TipoRepEmpresa] {
			requeridas[id] = struct{}{}
		}
	}

	filial, err := s.repo.HasRepresentanteFilial(ctx, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("papéis de filial do usuário %d: %w", usuarioID, err)
	}
	if filial {
		for _, id := range permissoesPorTipo[TipoRepFilial] {
			requeridas[id] = struct{}{}
		}
	}

	departamento, err := s.repo.HasRepresentanteDepartamento(ctx, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("papéis de departamento do usuário %d: %w", usuarioID, err)
	}
	if departamento {
		for _, id := range permissoesPorTipo[TipoRepDepartamento] {
			requeridas[id] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(requeridas))
	for id := range requeridas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

// RemovePermissoesRepresentante retira as permissões do tipo que nenhum outro
// papel ativo ainda exige. Deve ser chamada depois que o vínculo já foi
// rebaixado ou removido, para que o cálculo reflita o estado novo.
func (s *PermissaoService) RemovePermissoesRepresentante(ctx context.Context, usuarioID int64, tipo string) error {
	doTipo, err := PermissoesDoTipo(tipo)
	if err != nil {
		return err
	}

	requeridas, err := s.GetPermissoesRequeridas(ctx, usuarioID)
	if err != nil {
		return err
	}

	remover := diff(doTipo, requeridas)
	if len(remover) == 0 {
		return nil
	}

	if err := s.repo.DeleteUsuarioPermissoes(ctx, usuarioID, remover); err != nil {
		return fmt.Errorf("remover permissões do usuário %d: %w", usuarioID, err)
	}

	return nil
}

// ManagePermissoesAposRemocao é o ponto de entrada usado pelos serviços de
// vínculo depois de rebaixar/remover um papel de representante.
func (s *PermissaoService) ManagePermissoesAposRemocao(ctx context.Context, usuarioID int64, tipo string) error {
	return s.RemovePermissoesRepresentante(ctx, usuarioID, tipo)
}

// CreatePermissoesCliente concede o conjunto fixo do onboarding de cliente,
// independente de papéis de representante. Também idempotente.
func (s *PermissaoService) CreatePermissoesCliente(ctx context.Context, usuarioID int64, uid uuid.UUID) error {
	atuais, err := s.repo.ListPermissaoIDsByUsuario(ctx, usuarioID)
	if err != nil {
		return fmt.Errorf("permissões atuais do usuário %d: %w", usuarioID, err)
	}

	for _, id := range diff(permissoesCliente, atuais) {
		if err := s.repo.InsertUsuarioPermissao(ctx, usuarioID, id, uid); err != nil {
			return fmt.Errorf("atribuir permissão %d ao usuário %d: %w", id, usuarioID, err)
		}
	}

	return nil
}

// diff devolve os elementos de a ausentes em b, preservando a ordem de a.
func diff(a, b []int64) []int64 {
	present := make(map[int64]struct{}, len(b))
	for _, id := range b {
		present[id] = struct{}{}
	}

	var out []int64
	for _, id := range a {
		if _, ok := present[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
