package jornada

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitaltrack/bemestar/internal/analise"
	"github.com/vitaltrack/bemestar/internal/util"
)

// ErrAnaliseIndisponivel indica falha ou ausência do serviço de análise.
var ErrAnaliseIndisponivel = errors.New("serviço de análise indisponível")

type analisador interface {
	Analyze(ctx context.Context, req analise.Request) (*analise.Result, error)
}

// Service contém as regras de negócio de jornadas, perguntas e respostas.
type Service struct {
	repo    *Repository
	analise analisador
}

// NewService cria uma nova instância de Service. O cliente de análise pode ser
// nil quando o serviço não está configurado.
func NewService(repo *Repository, cliente *analise.Client) *Service {
	return &Service{repo: repo, analise: cliente}
}

// Get busca uma jornada pelo ID.
func (s *Service) Get(ctx context.Context, id int64) (*Jornada, error) {
	return s.repo.GetJornadaByID(ctx, id)
}

// ListByUsuario devolve as jornadas do usuário.
func (s *Service) ListByUsuario(ctx context.Context, usuarioID int64) ([]Jornada, error) {
	return s.repo.ListJornadasByUsuario(ctx, usuarioID)
}

// Create abre um relato novo.
func (s *Service) Create(ctx context.Context, usuarioID int64, relato string) (*Jornada, error) {
	if usuarioID == 0 {
		return nil, errors.New("id_usuario obrigatório")
	}
	if err := util.RequireString(relato, "relato"); err != nil {
		return nil, err
	}
	return s.repo.CreateJornada(ctx, usuarioID, relato)
}

// UpdateRelato altera o texto de uma jornada aberta. Jornada concluída é
// imutável.
func (s *Service) UpdateRelato(ctx context.Context, id int64, relato string) (*Jornada, error) {
	if err := util.RequireString(relato, "relato"); err != nil {
		return nil, err
	}

	j, err := s.repo.UpdateRelato(ctx, id, relato)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// O UPDATE filtra por NOT concluida: distingue inexistente de
			// concluída para a taxonomia correta.
			if _, getErr := s.repo.GetJornadaByID(ctx, id); getErr == nil {
				return nil, ErrJornadaConcluida
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	return j, nil
}

// Delete remove a jornada e suas respostas.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteJornada(ctx, id)
}

// Responder grava a resposta de uma pergunta dentro de uma jornada aberta.
func (s *Service) Responder(ctx context.Context, jornadaID, perguntaID int64, resposta string) error {
	if err := util.RequireString(resposta, "resposta"); err != nil {
		return err
	}

	j, err := s.repo.GetJornadaByID(ctx, jornadaID)
	if err != nil {
		return err
	}
	if j.Concluida {
		return ErrJornadaConcluida
	}

	if _, err := s.repo.GetPerguntaByID(ctx, perguntaID); err != nil {
		return err
	}

	return s.repo.UpsertResposta(ctx, jornadaID, perguntaID, resposta)
}

// Respostas devolve as respostas da jornada.
func (s *Service) Respostas(ctx context.Context, jornadaID int64) ([]Resposta, error) {
	if _, err := s.repo.GetJornadaByID(ctx, jornadaID); err != nil {
		return nil, err
	}
	return s.repo.ListRespostasByJornada(ctx, jornadaID)
}

// RemoverResposta apaga a resposta de uma pergunta em uma jornada aberta.
func (s *Service) RemoverResposta(ctx context.Context, jornadaID, perguntaID int64) error {
	j, err := s.repo.GetJornadaByID(ctx, jornadaID)
	if err != nil {
		return err
	}
	if j.Concluida {
		return ErrJornadaConcluida
	}
	return s.repo.DeleteResposta(ctx, jornadaID, perguntaID)
}

// Concluir envia relato e respostas ao serviço de análise e grava a avaliação
// devolvida, marcando a jornada como concluída. Falha na análise não conclui:
// o chamador pode repetir a operação.
func (s *Service) Concluir(ctx context.Context, id int64) (*Jornada, error) {
	j, err := s.repo.GetJornadaByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Concluida {
		return nil, ErrJornadaConcluida
	}

	respostas, err := s.repo.ListRespostasByJornada(ctx, id)
	if err != nil {
		return nil, err
	}

	req := analise.Request{Relato: j.Relato, Respostas: make([]analise.Resposta, 0, len(respostas))}
	for _, r := range respostas {
		req.Respostas = append(req.Respostas, analise.Resposta{
			Pergunta: r.PerguntaTexto,
			Resposta: r.Resposta,
		})
	}

	result, err := s.analise.Analyze(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnaliseIndisponivel, err)
	}

	return s.repo.SetResultado(ctx, id, result.AnalysisAI, result.Factor, result.Evaluate, result.Activities)
}

// GetPergunta busca uma pergunta pelo ID.
func (s *Service) GetPergunta(ctx context.Context, id int64) (*Pergunta, error) {
	return s.repo.GetPerguntaByID(ctx, id)
}

// ListPerguntas devolve as perguntas ativas.
func (s *Service) ListPerguntas(ctx context.Context) ([]Pergunta, error) {
	return s.repo.ListPerguntas(ctx)
}

// CreatePergunta cadastra uma pergunta.
func (s *Service) CreatePergunta(ctx context.Context, texto string) (*Pergunta, error) {
	if err := util.RequireString(texto, "texto"); err != nil {
		return nil, err
	}
	return s.repo.CreatePergunta(ctx, texto)
}

// UpdatePergunta altera texto e status.
func (s *Service) UpdatePergunta(ctx context.Context, id int64, texto string, status bool) (*Pergunta, error) {
	if err := util.RequireString(texto, "texto"); err != nil {
		return nil, err
	}
	return s.repo.UpdatePergunta(ctx, id, texto, status)
}

// InactivatePergunta desativa a pergunta.
func (s *Service) InactivatePergunta(ctx context.Context, id int64) error {
	return s.repo.InactivatePergunta(ctx, id)
}

// Dashboard agrega as jornadas do recorte. Período ausente assume os últimos
// trinta dias.
func (s *Service) Dashboard(ctx context.Context, filtro DashboardFiltro) (*DashboardResumo, error) {
	if filtro.IDEmpresa == 0 {
		return nil, errors.New("id_empresa obrigatório")
	}
	if filtro.Inicio.IsZero() || filtro.Fim.IsZero() {
		filtro.Inicio, filtro.Fim = intervaloPadrao()
	}
	if !filtro.Fim.After(filtro.Inicio) {
		return nil, errors.New("período inválido")
	}
	return s.repo.DashboardResumo(ctx, filtro)
}
