package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vitaltrack/bemestar/internal/repo"
)

type vinculoChave struct {
	usuarioID, entidadeID int64
}

type stubVinculoRepo struct {
	perms *stubPermissaoRepo

	usuarios      map[int64]repo.Usuario
	departamentos map[vinculoChave]repo.UsuarioDepartamento
	filiais       map[vinculoChave]repo.UsuarioFilial
	empresas      map[vinculoChave]repo.RepresentanteEmpresa
}

func newStubVinculoRepo() *stubVinculoRepo {
	return &stubVinculoRepo{
		perms:         newStubPermissaoRepo(),
		usuarios:      make(map[int64]repo.Usuario),
		departamentos: make(map[vinculoChave]repo.UsuarioDepartamento),
		filiais:       make(map[vinculoChave]repo.UsuarioFilial),
		empresas:      make(map[vinculoChave]repo.RepresentanteEmpresa),
	}
}

func (s *stubVinculoRepo) GetUsuarioByID(ctx context.Context, id int64) (repo.Usuario, error) {
	u, ok := s.usuarios[id]
	if !ok {
		return repo.Usuario{}, repo.ErrNotFound
	}
	return u, nil
}

func (s *stubVinculoRepo) GetUsuarioDepartamento(ctx context.Context, usuarioID, departamentoID int64) (repo.UsuarioDepartamento, error) {
	v, ok := s.departamentos[vinculoChave{usuarioID, departamentoID}]
	if !ok {
		return repo.UsuarioDepartamento{}, repo.ErrNotFound
	}
	return v, nil
}

func (s *stubVinculoRepo) ListUsuariosDepartamentos(ctx context.Context, departamentoID *int64) ([]repo.UsuarioDepartamento, error) {
	var out []repo.UsuarioDepartamento
	for _, v := range s.departamentos {
		if departamentoID == nil || v.IDDepartamento == *departamentoID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubVinculoRepo) ListRepresentantesDepartamento(ctx context.Context, departamentoID int64) ([]repo.UsuarioDepartamento, error) {
	var out []repo.UsuarioDepartamento
	for _, v := range s.departamentos {
		if v.IDDepartamento == departamentoID && v.IsRepresentante {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubVinculoRepo) InsertUsuarioDepartamento(ctx context.Context, v repo.UsuarioDepartamento) error {
	s.departamentos[vinculoChave{v.IDUsuario, v.IDDepartamento}] = v
	s.sincronizarFlags()
	return nil
}

func (s *stubVinculoRepo) UpdateUsuarioDepartamento(ctx context.Context, v repo.UsuarioDepartamento) error {
	s.departamentos[vinculoChave{v.IDUsuario, v.IDDepartamento}] = v
	s.sincronizarFlags()
	return nil
}

func (s *stubVinculoRepo) DeleteUsuarioDepartamento(ctx context.Context, usuarioID, departamentoID int64) error {
	delete(s.departamentos, vinculoChave{usuarioID, departamentoID})
	s.sincronizarFlags()
	return nil
}

func (s *stubVinculoRepo) GetUsuarioFilial(ctx context.Context, usuarioID, filialID int64) (repo.UsuarioFilial, error) {
	v, ok := s.filiais[vinculoChave{usuarioID, filialID}]
	if !ok {
		return repo.UsuarioFilial{}, repo.ErrNotFound
	}
	return v, nil
}

func (s *stubVinculoRepo) ListUsuariosFiliais(ctx context.Context, filialID *int64) ([]repo.UsuarioFilial, error) {
	var out []repo.UsuarioFilial
	for _, v := range s.filiais {
		if filialID == nil || v.IDFilial == *filialID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubVinculoRepo) ListRepresentantesFilial(ctx context.Context, filialID int64) ([]repo.UsuarioFilial, error) {
	var out []repo.UsuarioFilial
	for _, v := range s.filiais {
		if v.IDFilial == filialID && v.IsRepresentante {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubVinculoRepo) InsertUsuarioFilial(ctx context.Context, v repo.UsuarioFilial) error {
	s.filiais[vinculoChave{v.IDUsuario, v.IDFilial}] = v
	s.sincronizarFlags()
	return nil
}

func (s *stubVinculoRepo) UpdateUsuarioFilial(ctx context.Context, v repo.UsuarioFilial) error {
	s.filiais[vinculoChave{v.IDUsuario, v.IDFilial}] = v
	s.sincronizarFlags()
	return nil
}

func (s *stubVinculoRepo) DeleteUsuarioFilial(ctx context.Context, usuarioID, filialID int64) error {
	delete(s.filiais, vinculoChave{usuarioID, filialID})
	s.sincronizarFlags()
	return nil
}

func (s *stubVinculoRepo) GetRepresentanteEmpresa(ctx context.Context, usuarioID, empresaID int64) (repo.RepresentanteEmpresa, error) {
	v, ok := s.empresas[vinculoChave{usuarioID, empresaID}]
	if !ok {
		return repo.RepresentanteEmpresa{}, repo.ErrNotFound
	}
	return v, nil
}

func (s *stubVinculoRepo) ListRepresentantesEmpresa(ctx context.Context, empresaID int64) ([]repo.RepresentanteEmpresa, error) {
	var out []repo.RepresentanteEmpresa
	for _, v := range s.empresas {
		if v.IDEmpresa == empresaID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubVinculoRepo) InsertRepresentanteEmpresa(ctx context.Context, v repo.RepresentanteEmpresa) error {
	s.empresas[vinculoChave{v.IDUsuario, v.IDEmpresa}] = v
	s.sincronizarFlags()
	return nil
}

func (s *stubVinculoRepo) UpdateRepresentanteEmpresa(ctx context.Context, v repo.RepresentanteEmpresa) error {
	s.empresas[vinculoChave{v.IDUsuario, v.IDEmpresa}] = v
	s.sincronizarFlags()
	return nil
}

func (s *stubVinculoRepo) DeleteRepresentanteEmpresa(ctx context.Context, usuarioID, empresaID int64) error {
	delete(s.empresas, vinculoChave{usuarioID, empresaID})
	s.sincronizarFlags()
	return nil
}

// sincronizarFlags espelha nos flags do stub de permissões o que as consultas
// HasRepresentante* observariam no banco após cada mutação.
func (s *stubVinculoRepo) sincronizarFlags() {
	s.perms.hasDepartamento = false
	for _, v := range s.departamentos {
		if v.IsRepresentante {
			s.perms.hasDepartamento = true
		}
	}
	s.perms.hasFilial = false
	for _, v := range s.filiais {
		if v.IsRepresentante {
			s.perms.hasFilial = true
		}
	}
	s.perms.hasEmpresa = false
	for _, v := range s.empresas {
		if v.IsRepresentante {
			s.perms.hasEmpresa = true
		}
	}
}

func newVinculoFixture() (*stubVinculoRepo, *PermissaoService) {
	store := newStubVinculoRepo()
	store.usuarios[1] = repo.Usuario{ID: 1, UID: uuid.New(), Nome: "Bruno Lima", Email: "bruno@empresa.com.br", Status: true}
	return store, NewPermissaoService(store.perms)
}

func TestUsuarioDepartamentoCreateDuplicado(t *testing.T) {
	store, perms := newVinculoFixture()
	svc := NewUsuarioDepartamentoService(store, perms)

	v := repo.UsuarioDepartamento{IDUsuario: 1, IDDepartamento: 10}
	if err := svc.Create(context.Background(), v); err != nil {
		t.Fatalf("criar vínculo: %v", err)
	}
	if err := svc.Create(context.Background(), v); !errors.Is(err, ErrVinculoExistente) {
		t.Fatalf("duplicata deveria falhar com ErrVinculoExistente: %v", err)
	}
	if len(store.perms.atuais()) != 0 {
		t.Fatalf("vínculo comum não concede permissões: %v", store.perms.atuais())
	}
}

func TestUsuarioDepartamentoCreateRepresentante(t *testing.T) {
	store, perms := newVinculoFixture()
	svc := NewUsuarioDepartamentoService(store, perms)

	v := repo.UsuarioDepartamento{IDUsuario: 1, IDDepartamento: 10, IsRepresentante: true}
	if err := svc.Create(context.Background(), v); err != nil {
		t.Fatalf("criar vínculo representante: %v", err)
	}
	if !equalIDs(store.perms.atuais(), []int64{1, 4, 6}) {
		t.Fatalf("permissões concedidas: %v", store.perms.atuais())
	}
}

func TestUsuarioDepartamentoUpdatePromove(t *testing.T) {
	store, perms := newVinculoFixture()
	svc := NewUsuarioDepartamentoService(store, perms)

	if err := svc.Create(context.Background(), repo.UsuarioDepartamento{IDUsuario: 1, IDDepartamento: 10}); err != nil {
		t.Fatalf("criar vínculo: %v", err)
	}

	err := svc.Update(context.Background(), repo.UsuarioDepartamento{IDUsuario: 1, IDDepartamento: 10, IsRepresentante: true})
	if err != nil {
		t.Fatalf("promover: %v", err)
	}
	if !equalIDs(store.perms.atuais(), []int64{1, 4, 6}) {
		t.Fatalf("permissões após promoção: %v", store.perms.atuais())
	}
}

func TestUsuarioDepartamentoUpdateRebaixaComFilialAtiva(t *testing.T) {
	store, perms := newVinculoFixture()
	departamentos := NewUsuarioDepartamentoService(store, perms)
	filiais := NewUsuarioFilialService(store, perms)

	ctx := context.Background()
	if err := departamentos.Create(ctx, repo.UsuarioDepartamento{IDUsuario: 1, IDDepartamento: 10, IsRepresentante: true}); err != nil {
		t.Fatalf("representante de departamento: %v", err)
	}
	if err := filiais.Create(ctx, repo.UsuarioFilial{IDUsuario: 1, IDFilial: 3, IsRepresentante: true}); err != nil {
		t.Fatalf("representante de filial: %v", err)
	}
	if !equalIDs(store.perms.atuais(), []int64{1, 3, 4, 5, 6}) {
		t.Fatalf("união dos dois papéis: %v", store.perms.atuais())
	}

	err := departamentos.Update(ctx, repo.UsuarioDepartamento{IDUsuario: 1, IDDepartamento: 10, IsRepresentante: false})
	if err != nil {
		t.Fatalf("rebaixar: %v", err)
	}
	// só a permissão exclusiva de departamento (6) cai; a união de filial fica intacta
	if !equalIDs(store.perms.atuais(), []int64{1, 3, 4, 5}) {
		t.Fatalf("permissões após rebaixar: %v", store.perms.atuais())
	}
}

func TestUsuarioDepartamentoUpdateInexistente(t *testing.T) {
	store, perms := newVinculoFixture()
	svc := NewUsuarioDepartamentoService(store, perms)

	err := svc.Update(context.Background(), repo.UsuarioDepartamento{IDUsuario: 1, IDDepartamento: 77, IsRepresentante: true})
	if !errors.Is(err, ErrVinculoNaoEncontrado) {
		t.Fatalf("esperado ErrVinculoNaoEncontrado, veio %v", err)
	}
}

func TestUsuarioDepartamentoDeletePodaPermissoes(t *testing.T) {
	store, perms := newVinculoFixture()
	svc := NewUsuarioDepartamentoService(store, perms)

	ctx := context.Background()
	if err := svc.Create(ctx, repo.UsuarioDepartamento{IDUsuario: 1, IDDepartamento: 10, IsRepresentante: true}); err != nil {
		t.Fatalf("criar vínculo representante: %v", err)
	}

	if err := svc.Delete(ctx, 1, 10); err != nil {
		t.Fatalf("remover vínculo: %v", err)
	}
	if len(store.perms.atuais()) != 0 {
		t.Fatalf("permissões deveriam ter sido podadas: %v", store.perms.atuais())
	}
	if _, err := store.GetUsuarioDepartamento(ctx, 1, 10); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("vínculo deveria ter sumido: %v", err)
	}

	if err := svc.Delete(ctx, 1, 10); !errors.Is(err, ErrVinculoNaoEncontrado) {
		t.Fatalf("segunda remoção deveria falhar: %v", err)
	}
}

func TestUsuarioFilialCicloCompleto(t *testing.T) {
	store, perms := newVinculoFixture()
	svc := NewUsuarioFilialService(store, perms)

	ctx := context.Background()
	if err := svc.Create(ctx, repo.UsuarioFilial{IDUsuario: 1, IDFilial: 3, IsRepresentante: true}); err != nil {
		t.Fatalf("criar vínculo: %v", err)
	}
	if !equalIDs(store.perms.atuais(), []int64{1, 3, 4, 5}) {
		t.Fatalf("permissões de filial: %v", store.perms.atuais())
	}

	reps, err := svc.ListRepresentantes(ctx, 3)
	if err != nil || len(reps) != 1 {
		t.Fatalf("representantes da filial: %v, %v", reps, err)
	}

	if err := svc.Delete(ctx, 1, 3); err != nil {
		t.Fatalf("remover vínculo: %v", err)
	}
	if len(store.perms.atuais()) != 0 {
		t.Fatalf("permissões após remoção: %v", store.perms.atuais())
	}
}

func TestRepresentanteEmpresaCicloCompleto(t *testing.T) {
	store, perms := newVinculoFixture()
	svc := NewRepresentanteEmpresaService(store, perms)

	ctx := context.Background()
	v := repo.RepresentanteEmpresa{IDUsuario: 1, IDEmpresa: 5, IsRepresentante: true}
	if err := svc.Create(ctx, v); err != nil {
		t.Fatalf("criar representante: %v", err)
	}
	if !equalIDs(store.perms.atuais(), []int64{1, 2, 3, 4, 9}) {
		t.Fatalf("permissões de empresa: %v", store.perms.atuais())
	}
	if err := svc.Create(ctx, v); !errors.Is(err, ErrVinculoExistente) {
		t.Fatalf("duplicata deveria falhar: %v", err)
	}

	if err := svc.Update(ctx, repo.RepresentanteEmpresa{IDUsuario: 1, IDEmpresa: 5, IsRepresentante: false}); err != nil {
		t.Fatalf("rebaixar: %v", err)
	}
	if len(store.perms.atuais()) != 0 {
		t.Fatalf("permissões após rebaixar: %v", store.perms.atuais())
	}
}
