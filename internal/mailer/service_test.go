package mailer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type memSender struct {
	msgs []Message
	fail error
}

func (m *memSender) Send(ctx context.Context, msg Message) error {
	if m.fail != nil {
		return m.fail
	}
	m.msgs = append(m.msgs, msg)
	return nil
}

type memLogWriter struct {
	registros []EmailLog
}

func (m *memLogWriter) Insert(ctx context.Context, destinatario, assunto string, sucesso bool, erro *string) (*EmailLog, error) {
	registro := EmailLog{
		ID:           int64(len(m.registros) + 1),
		Destinatario: destinatario,
		Assunto:      assunto,
		Sucesso:      sucesso,
		Erro:         erro,
		EnviadoEm:    time.Now(),
	}
	m.registros = append(m.registros, registro)
	return &registro, nil
}

func TestSendPasswordResetRegistraSucesso(t *testing.T) {
	sender := &memSender{}
	logs := &memLogWriter{}
	svc := NewService(sender, logs)

	err := svc.SendPasswordReset(context.Background(), "dora@empresa.com.br", "Dora", "AB12CD34", "https://app/resetar?token=t")
	if err != nil {
		t.Fatalf("enviar: %v", err)
	}

	if len(sender.msgs) != 1 {
		t.Fatalf("mensagens enviadas: %d", len(sender.msgs))
	}
	msg := sender.msgs[0]
	if !strings.Contains(msg.HTML, "AB12CD34") || !strings.Contains(msg.HTML, "Dora") {
		t.Fatalf("corpo sem código ou nome: %s", msg.HTML)
	}

	if len(logs.registros) != 1 {
		t.Fatalf("registros: %d", len(logs.registros))
	}
	registro := logs.registros[0]
	if !registro.Sucesso || registro.Erro != nil || registro.Destinatario != "dora@empresa.com.br" {
		t.Fatalf("registro de envio: %+v", registro)
	}
}

func TestSendFalhaRegistraErro(t *testing.T) {
	sender := &memSender{fail: errors.New("provedor fora do ar")}
	logs := &memLogWriter{}
	svc := NewService(sender, logs)

	err := svc.SendWelcome(context.Background(), "eva@empresa.com.br", "Eva", "https://app/definir-senha?token=t")
	if err == nil {
		t.Fatal("falha do sender deveria propagar")
	}

	if len(logs.registros) != 1 {
		t.Fatalf("registros: %d", len(logs.registros))
	}
	registro := logs.registros[0]
	if registro.Sucesso || registro.Erro == nil || !strings.Contains(*registro.Erro, "provedor fora do ar") {
		t.Fatalf("registro de falha: %+v", registro)
	}
}

func TestHTTPSenderEnvio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer chave-mailer" {
			t.Errorf("authorization: %q", got)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender, err := NewHTTPSender(srv.URL, "chave-mailer", "no-reply@vitaltrack.com.br")
	if err != nil {
		t.Fatalf("criar sender: %v", err)
	}
	if err := sender.Send(context.Background(), Message{To: "a@b.com", Subject: "teste", HTML: "<p>oi</p>"}); err != nil {
		t.Fatalf("enviar: %v", err)
	}
}

func TestHTTPSenderRecusa(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "destinatário bloqueado", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	sender, err := NewHTTPSender(srv.URL, "", "no-reply@vitaltrack.com.br")
	if err != nil {
		t.Fatalf("criar sender: %v", err)
	}
	err = sender.Send(context.Background(), Message{To: "a@b.com", Subject: "teste"})
	if err == nil || !strings.Contains(err.Error(), "422") {
		t.Fatalf("recusa do provedor deveria falhar com status: %v", err)
	}
}

func TestNewHTTPSenderSemURL(t *testing.T) {
	if _, err := NewHTTPSender("", "k", "f"); err == nil {
		t.Fatal("URL vazia deveria falhar")
	}
}
