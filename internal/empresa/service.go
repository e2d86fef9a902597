package empresa

import (
	"context"

	"github.com/vitaltrack/bemestar/internal/util"
)

// Service contém as regras de negócio de empresas.
type Service struct {
	repo *Repository
}

// NewService cria uma nova instância de Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Get busca uma empresa pelo ID.
func (s *Service) Get(ctx context.Context, id int64) (*Empresa, error) {
	return s.repo.GetByID(ctx, id)
}

// List devolve as empresas ativas.
func (s *Service) List(ctx context.Context) ([]Empresa, error) {
	return s.repo.List(ctx)
}

// Create cadastra uma empresa nova.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Empresa, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, input)
}

// Update altera os dados da empresa.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Empresa, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, input)
}

// Inactivate marca a empresa como inativa (nunca remove fisicamente).
func (s *Service) Inactivate(ctx context.Context, id int64) error {
	return s.repo.Inactivate(ctx, id)
}
