package jornada

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository fornece acesso às tabelas jornadas, perguntas e respostas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const jornadaColumns = `id, id_usuario, relato, concluida, analysis_ai, factor, evaluate, activities, criado_em, concluida_em`

// GetJornadaByID recupera a jornada pelo ID.
func (r *Repository) GetJornadaByID(ctx context.Context, id int64) (*Jornada, error) {
	const query = `SELECT ` + jornadaColumns + ` FROM jornadas WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanJornada(row)
}

// ListJornadasByUsuario devolve as jornadas do usuário, mais recentes antes.
func (r *Repository) ListJornadasByUsuario(ctx context.Context, usuarioID int64) ([]Jornada, error) {
	const query = `
        SELECT ` + jornadaColumns + `
        FROM jornadas
        WHERE id_usuario = $1
        ORDER BY criado_em DESC
    `

	rows, err := r.pool.Query(ctx, query, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jornadas []Jornada
	for rows.Next() {
		j, err := scanJornada(rows)
		if err != nil {
			return nil, err
		}
		jornadas = append(jornadas, *j)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return jornadas, nil
}

// CreateJornada insere um relato aberto.
func (r *Repository) CreateJornada(ctx context.Context, usuarioID int64, relato string) (*Jornada, error) {
	const query = `
        INSERT INTO jornadas (id_usuario, relato, concluida)
        VALUES ($1, $2, false)
        RETURNING ` + jornadaColumns

	row := r.pool.QueryRow(ctx, query, usuarioID, strings.TrimSpace(relato))
	return scanJornada(row)
}

// UpdateRelato altera o texto de uma jornada ainda aberta.
func (r *Repository) UpdateRelato(ctx context.Context, id int64, relato string) (*Jornada, error) {
	const query = `
        UPDATE jornadas
        SET relato = $2
        WHERE id = $1 AND NOT concluida
        RETURNING ` + jornadaColumns

	row := r.pool.QueryRow(ctx, query, id, strings.TrimSpace(relato))
	return scanJornada(row)
}

// SetResultado grava a avaliação e marca a jornada como concluída.
func (r *Repository) SetResultado(ctx context.Context, id int64, analysisAI, factor, evaluate string, activities []string) (*Jornada, error) {
	const query = `
        UPDATE jornadas
        SET concluida = true,
            analysis_ai = $2,
            factor = $3,
            evaluate = $4,
            activities = $5,
            concluida_em = now()
        WHERE id = $1
        RETURNING ` + jornadaColumns

	row := r.pool.QueryRow(ctx, query, id, analysisAI, factor, evaluate, activities)
	return scanJornada(row)
}

// DeleteJornada remove a jornada e as respostas associadas.
func (r *Repository) DeleteJornada(ctx context.Context, id int64) error {
	const query = `DELETE FROM jornadas WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const perguntaColumns = `id, texto, status, criado_em`

// GetPerguntaByID recupera a pergunta pelo ID.
func (r *Repository) GetPerguntaByID(ctx context.Context, id int64) (*Pergunta, error) {
	const query = `SELECT ` + perguntaColumns + ` FROM perguntas WHERE id = $1`

	var p Pergunta
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Texto, &p.Status, &p.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPerguntaNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPerguntas devolve as perguntas ativas na ordem de cadastro.
func (r *Repository) ListPerguntas(ctx context.Context) ([]Pergunta, error) {
	const query = `SELECT ` + perguntaColumns + ` FROM perguntas WHERE status ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perguntas []Pergunta
	for rows.Next() {
		var p Pergunta
		if err := rows.Scan(&p.ID, &p.Texto, &p.Status, &p.CriadoEm); err != nil {
			return nil, err
		}
		perguntas = append(perguntas, p)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return perguntas, nil
}

// CreatePergunta insere pergunta ativa.
func (r *Repository) CreatePergunta(ctx context.Context, texto string) (*Pergunta, error) {
	const query = `
        INSERT INTO perguntas (texto, status)
        VALUES ($1, true)
        RETURNING ` + perguntaColumns

	var p Pergunta
	err := r.pool.QueryRow(ctx, query, strings.TrimSpace(texto)).Scan(&p.ID, &p.Texto, &p.Status, &p.CriadoEm)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePergunta altera texto e status.
func (r *Repository) UpdatePergunta(ctx context.Context, id int64, texto string, status bool) (*Pergunta, error) {
	const query = `
        UPDATE perguntas
        SET texto = $2, status = $3
        WHERE id = $1
        RETURNING ` + perguntaColumns

	var p Pergunta
	err := r.pool.QueryRow(ctx, query, id, strings.TrimSpace(texto), status).Scan(&p.ID, &p.Texto, &p.Status, &p.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPerguntaNotFound
		}
		return nil, err
	}
	return &p, nil
}

// InactivatePergunta desativa a pergunta, preservando respostas antigas.
func (r *Repository) InactivatePergunta(ctx context.Context, id int64) error {
	const query = `UPDATE perguntas SET status = false WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPerguntaNotFound
	}
	return nil
}

// ListRespostasByJornada devolve as respostas da jornada com o texto da
// pergunta correspondente.
func (r *Repository) ListRespostasByJornada(ctx context.Context, jornadaID int64) ([]Resposta, error) {
	const query = `
        SELECT r.id, r.id_jornada, r.id_pergunta, p.texto, r.resposta
        FROM respostas r
        JOIN perguntas p ON p.id = r.id_pergunta
        WHERE r.id_jornada = $1
        ORDER BY r.id_pergunta
    `

	rows, err := r.pool.Query(ctx, query, jornadaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var respostas []Resposta
	for rows.Next() {
		var resp Resposta
		if err := rows.Scan(&resp.ID, &resp.IDJornada, &resp.IDPergunta, &resp.PerguntaTexto, &resp.Resposta); err != nil {
			return nil, err
		}
		respostas = append(respostas, resp)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return respostas, nil
}

// UpsertResposta grava ou substitui a resposta de uma pergunta na jornada.
func (r *Repository) UpsertResposta(ctx context.Context, jornadaID, perguntaID int64, resposta string) error {
	const query = `
        INSERT INTO respostas (id_jornada, id_pergunta, resposta)
        VALUES ($1, $2, $3)
        ON CONFLICT (id_jornada, id_pergunta) DO UPDATE SET resposta = EXCLUDED.resposta
    `

	_, err := r.pool.Exec(ctx, query, jornadaID, perguntaID, strings.TrimSpace(resposta))
	return err
}

// DeleteResposta remove a resposta de uma pergunta na jornada.
func (r *Repository) DeleteResposta(ctx context.Context, jornadaID, perguntaID int64) error {
	const query = `DELETE FROM respostas WHERE id_jornada = $1 AND id_pergunta = $2`

	tag, err := r.pool.Exec(ctx, query, jornadaID, perguntaID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DashboardResumo agrega as jornadas do recorte. Filial e departamento são
// opcionais; quando nulos o recorte é a empresa inteira.
func (r *Repository) DashboardResumo(ctx context.Context, filtro DashboardFiltro) (*DashboardResumo, error) {
	const totais = `
        SELECT count(*), count(*) FILTER (WHERE j.concluida)
        FROM jornadas j
        JOIN usuarios u ON u.id = j.id_usuario
        WHERE u.id_empresa = $1
          AND j.criado_em >= $2 AND j.criado_em < $3
          AND ($4::bigint IS NULL OR EXISTS (
              SELECT 1 FROM usuarios_filiais uf
              WHERE uf.id_usuario = u.id AND uf.id_filial = $4
          ))
          AND ($5::bigint IS NULL OR EXISTS (
              SELECT 1 FROM usuarios_departamentos ud
              WHERE ud.id_usuario = u.id AND ud.id_departamento = $5
          ))
    `

	resumo := &DashboardResumo{PorFator: []ContagemFator{}}
	err := r.pool.QueryRow(ctx, totais,
		filtro.IDEmpresa, filtro.Inicio, filtro.Fim, filtro.IDFilial, filtro.IDDepartamento,
	).Scan(&resumo.Total, &resumo.Concluidas)
	if err != nil {
		return nil, err
	}

	const fatores = `
        SELECT j.factor, count(*)
        FROM jornadas j
        JOIN usuarios u ON u.id = j.id_usuario
        WHERE u.id_empresa = $1
          AND j.criado_em >= $2 AND j.criado_em < $3
          AND j.concluida AND j.factor IS NOT NULL
          AND ($4::bigint IS NULL OR EXISTS (
              SELECT 1 FROM usuarios_filiais uf
              WHERE uf.id_usuario = u.id AND uf.id_filial = $4
          ))
          AND ($5::bigint IS NULL OR EXISTS (
              SELECT 1 FROM usuarios_departamentos ud
              WHERE ud.id_usuario = u.id AND ud.id_departamento = $5
          ))
        GROUP BY j.factor
        ORDER BY count(*) DESC, j.factor
    `

	rows, err := r.pool.Query(ctx, fatores,
		filtro.IDEmpresa, filtro.Inicio, filtro.Fim, filtro.IDFilial, filtro.IDDepartamento,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c ContagemFator
		if err := rows.Scan(&c.Fator, &c.Total); err != nil {
			return nil, err
		}
		resumo.PorFator = append(resumo.PorFator, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return resumo, nil
}

func scanJornada(row pgx.Row) (*Jornada, error) {
	var j Jornada
	err := row.Scan(
		&j.ID, &j.IDUsuario, &j.Relato, &j.Concluida,
		&j.AnalysisAI, &j.Factor, &j.Evaluate, &j.Activities,
		&j.CriadoEm, &j.ConcluidaEm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

// intervaloPadrao devolve os últimos trinta dias quando o recorte não informa
// período.
func intervaloPadrao() (time.Time, time.Time) {
	fim := time.Now()
	return fim.AddDate(0, 0, -30), fim
}
