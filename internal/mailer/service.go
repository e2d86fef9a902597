package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

type logWriter interface {
	Insert(ctx context.Context, destinatario, assunto string, sucesso bool, erro *string) (*EmailLog, error)
}

// Service compõe o sender com o registro de envios.
type Service struct {
	sender Sender
	logs   logWriter
}

// NewService cria o serviço de e-mail.
func NewService(sender Sender, logs logWriter) *Service {
	return &Service{sender: sender, logs: logs}
}

// SendPasswordReset envia o e-mail com código e link de redefinição.
func (s *Service) SendPasswordReset(ctx context.Context, destinatario, nome, codigo, link string) error {
	msg := Message{
		To:      destinatario,
		Subject: "Redefinição de senha",
		HTML:    passwordResetHTML(nome, codigo, link),
	}
	return s.send(ctx, msg)
}

// SendWelcome envia as boas-vindas com o link para definir a senha.
func (s *Service) SendWelcome(ctx context.Context, destinatario, nome, link string) error {
	msg := Message{
		To:      destinatario,
		Subject: "Bem-vindo(a) à plataforma",
		HTML:    welcomeHTML(nome, link),
	}
	return s.send(ctx, msg)
}

func (s *Service) send(ctx context.Context, msg Message) error {
	err := s.sender.Send(ctx, msg)

	var detalhe *string
	if err != nil {
		texto := err.Error()
		detalhe = &texto
	}

	if _, logErr := s.logs.Insert(ctx, msg.To, msg.Subject, err == nil, detalhe); logErr != nil {
		// o registro do envio nunca derruba a operação
		log.Error().Err(logErr).Str("to", msg.To).Msg("falha ao registrar envio de e-mail")
	}

	if err != nil {
		return fmt.Errorf("enviar e-mail para %s: %w", msg.To, err)
	}
	return nil
}

func passwordResetHTML(nome, codigo, link string) string {
	return fmt.Sprintf(`
        <p>Olá, %s.</p>
        <p>Recebemos um pedido de redefinição de senha. Use o código abaixo, válido por 15 minutos:</p>
        <p style="font-size:24px;font-weight:bold;letter-spacing:2px">%s</p>
        <p>Ou acesse diretamente: <a href="%s">redefinir senha</a></p>
        <p>Se você não pediu a redefinição, ignore este e-mail.</p>
    `, nome, codigo, link)
}

func welcomeHTML(nome, link string) string {
	return fmt.Sprintf(`
        <p>Olá, %s. Sua conta foi criada.</p>
        <p>Defina sua senha de acesso pelo link: <a href="%s">definir senha</a></p>
    `, nome, link)
}
