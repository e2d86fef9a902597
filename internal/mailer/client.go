// Package mailer envia e-mails transacionais através de um provedor HTTP e
// registra cada tentativa em email_logs.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Message é o envelope aceito pelo provedor.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Sender envia uma mensagem para o destinatário.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// HTTPSender fala com o provedor de e-mail via POST JSON autenticado.
type HTTPSender struct {
	url    string
	apiKey string
	from   string
	client *http.Client
}

// NewHTTPSender cria o sender. Devolve erro se a URL não foi configurada.
func NewHTTPSender(url, apiKey, from string) (*HTTPSender, error) {
	if url == "" {
		return nil, errors.New("mailer: url do provedor obrigatória")
	}
	return &HTTPSender{
		url:    url,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	payload := map[string]string{
		"from":    s.from,
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailer: provedor recusou envio (%d): %s", resp.StatusCode, string(detail))
	}

	return nil
}

// LogSender apenas registra a mensagem no log; usado quando o provedor não
// está configurado (desenvolvimento local).
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("e-mail (modo log)")
	return nil
}
