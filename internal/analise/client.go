// Package analise encapsula a chamada ao serviço externo de análise (N8n)
// que devolve o retorno de IA para uma jornada concluída.
package analise

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured indica cliente sem URL configurada.
var ErrNotConfigured = errors.New("analise: serviço não configurado")

// Resposta é um par pergunta/resposta enviado para análise.
type Resposta struct {
	Pergunta string `json:"pergunta"`
	Resposta string `json:"resposta"`
}

// Request é o corpo enviado ao serviço.
type Request struct {
	Relato    string     `json:"relato"`
	Respostas []Resposta `json:"respostas"`
}

// Result é a avaliação devolvida pelo serviço.
type Result struct {
	AnalysisAI string   `json:"analysisAI"`
	Factor     string   `json:"factor"`
	Evaluate   string   `json:"evaluate"`
	Activities []string `json:"activities"`
}

// Client fala com o endpoint de análise.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
}

// Config descreve o endpoint e a credencial do serviço.
type Config struct {
	URL    string
	APIKey string
}

// New cria o cliente. URL vazia devolve nil (serviço opcional).
func New(cfg Config) *Client {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        strings.TrimSpace(cfg.URL),
		apiKey:     strings.TrimSpace(cfg.APIKey),
	}
}

// Analyze envia o relato e as respostas e devolve a avaliação da IA.
func (c *Client) Analyze(ctx context.Context, req Request) (*Result, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analise: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("analise: chamada falhou (%d): %s", resp.StatusCode, string(detail))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("analise: resposta ilegível: %w", err)
	}

	return &result, nil
}
