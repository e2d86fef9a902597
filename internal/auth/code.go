package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// GenerateResetCode cria o código curto enviado por e-mail (8 caracteres hex).
func GenerateResetCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashToken produz hash SHA-256 base64 de um token, usado como chave de revogação.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// SessionRedisKey monta a chave Redis que marca uma sessão como emitida.
func SessionRedisKey(hash string) string {
	return fmt.Sprintf("sessao:%s", hash)
}
