package analise

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewSemURL(t *testing.T) {
	if c := New(Config{URL: "  "}); c != nil {
		t.Fatal("URL vazia deveria devolver cliente nil")
	}
}

func TestAnalyzeClienteNil(t *testing.T) {
	var c *Client
	_, err := c.Analyze(context.Background(), Request{Relato: "dia pesado"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("esperado ErrNotConfigured, veio %v", err)
	}
}

func TestAnalyzeSucesso(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("método: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer chave-n8n" {
			t.Errorf("authorization: %q", got)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("corpo ilegível: %v", err)
		}
		if req.Relato != "semana difícil" || len(req.Respostas) != 1 {
			t.Errorf("payload: %+v", req)
		}

		_ = json.NewEncoder(w).Encode(Result{
			AnalysisAI: "sinais de sobrecarga",
			Factor:     "estresse",
			Evaluate:   "atenção",
			Activities: []string{"pausa guiada", "caminhada"},
		})
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL, APIKey: "chave-n8n"})
	result, err := c.Analyze(context.Background(), Request{
		Relato:    "semana difícil",
		Respostas: []Resposta{{Pergunta: "Como dormiu?", Resposta: "Mal"}},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.Factor != "estresse" || len(result.Activities) != 2 {
		t.Fatalf("resultado: %+v", result)
	}
}

func TestAnalyzeErroUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow indisponível", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL})
	_, err := c.Analyze(context.Background(), Request{Relato: "x"})
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("esperada falha com status 502: %v", err)
	}
}
