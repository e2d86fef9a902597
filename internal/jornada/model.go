// Package jornada gerencia os registros de jornada emocional dos
// colaboradores: relatos, perguntas de apoio, respostas e a conclusão com
// avaliação de IA.
package jornada

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indica jornada inexistente.
	ErrNotFound = errors.New("jornada não encontrada")
	// ErrPerguntaNotFound indica pergunta inexistente.
	ErrPerguntaNotFound = errors.New("pergunta não encontrada")
	// ErrJornadaConcluida indica jornada já concluída e imutável.
	ErrJornadaConcluida = errors.New("jornada já concluída")
)

// Jornada é o registro de um relato. Os campos de avaliação são preenchidos
// na conclusão, a partir do serviço de análise.
type Jornada struct {
	ID          int64      `json:"id"`
	IDUsuario   int64      `json:"id_usuario"`
	Relato      string     `json:"relato"`
	Concluida   bool       `json:"concluida"`
	AnalysisAI  *string    `json:"analysis_ai"`
	Factor      *string    `json:"factor"`
	Evaluate    *string    `json:"evaluate"`
	Activities  []string   `json:"activities"`
	CriadoEm    time.Time  `json:"criado_em"`
	ConcluidaEm *time.Time `json:"concluida_em"`
}

// Pergunta é uma pergunta de apoio apresentada junto ao relato.
type Pergunta struct {
	ID       int64     `json:"id"`
	Texto    string    `json:"texto"`
	Status   bool      `json:"status"`
	CriadoEm time.Time `json:"criado_em"`
}

// Resposta é a resposta dada a uma pergunta dentro de uma jornada. O texto da
// pergunta acompanha para montar o payload de análise.
type Resposta struct {
	ID            int64  `json:"id"`
	IDJornada     int64  `json:"id_jornada"`
	IDPergunta    int64  `json:"id_pergunta"`
	PerguntaTexto string `json:"pergunta"`
	Resposta      string `json:"resposta"`
}

// DashboardFiltro delimita o recorte dos agregados.
type DashboardFiltro struct {
	IDEmpresa      int64
	IDFilial       *int64
	IDDepartamento *int64
	Inicio         time.Time
	Fim            time.Time
}

// ContagemFator é a contagem de jornadas concluídas por fator avaliado.
type ContagemFator struct {
	Fator string `json:"fator"`
	Total int64  `json:"total"`
}

// DashboardResumo agrega as jornadas do recorte.
type DashboardResumo struct {
	Total      int64           `json:"total"`
	Concluidas int64           `json:"concluidas"`
	PorFator   []ContagemFator `json:"por_fator"`
}
