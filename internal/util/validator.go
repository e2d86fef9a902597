package util

import (
	"net/mail"
	"strings"
)

// ValidationError marca erros de entrada do chamador, distinguindo-os de
// falhas internas na camada HTTP.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string {
	return e.msg
}

// Invalid cria um erro de validação com a mensagem dada.
func Invalid(msg string) error {
	return ValidationError{msg: msg}
}

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Invalid("email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Invalid("email inválido")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return Invalid("senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return Invalid(field + " obrigatório")
	}
	return nil
}
