package util

import (
	"errors"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("ana@empresa.com.br"); err != nil {
		t.Fatalf("e-mail válido rejeitado: %v", err)
	}
	for _, email := range []string{"", "   ", "sem-arroba", "@dominio.com"} {
		err := ValidateEmail(email)
		if err == nil {
			t.Fatalf("e-mail %q deveria ser rejeitado", email)
		}
		var invalid ValidationError
		if !errors.As(err, &invalid) {
			t.Fatalf("erro de %q deveria ser ValidationError: %v", email, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345678"); err != nil {
		t.Fatalf("senha de 8 caracteres rejeitada: %v", err)
	}
	if err := ValidatePassword("curta"); err == nil {
		t.Fatal("senha curta deveria ser rejeitada")
	}
}

func TestRequireString(t *testing.T) {
	if err := RequireString("x", "nome"); err != nil {
		t.Fatalf("valor presente rejeitado: %v", err)
	}
	err := RequireString("   ", "nome")
	if err == nil || err.Error() != "nome obrigatório" {
		t.Fatalf("mensagem inesperada: %v", err)
	}
}
