package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/bemestar/internal/auth"
)

type contextKey string

const (
	ContextKeySubject    contextKey = "subject"
	ContextKeyClaims     contextKey = "claims"
	ContextKeyToken      contextKey = "token"
	ContextKeyPermissoes contextKey = "permissoes"
)

// Auth valida o token de sessão e injeta os claims no contexto. A presença no
// store de sessões é verificada antes da assinatura: token revogado ou nunca
// emitido é rejeitado mesmo quando criptograficamente válido.
func Auth(tokens *auth.TokenManager, sessions auth.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}
			token := parts[1]

			active, err := sessions.Has(r.Context(), token)
			if err != nil {
				log.Error().Err(err).Msg("consulta ao store de sessões falhou")
				writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
				return
			}
			if !active {
				writeError(w, http.StatusUnauthorized, "AUTH", "sessão encerrada")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.UID)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			ctx = context.WithValue(ctx, ContextKeyToken, token)
			ctx = context.WithValue(ctx, ContextKeyPermissoes, claims.Permissoes)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera o uid do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetClaims recupera os claims completos do contexto.
func GetClaims(ctx context.Context) *auth.SessionClaims {
	val, _ := ctx.Value(ContextKeyClaims).(*auth.SessionClaims)
	return val
}

// GetToken recupera o token bruto da requisição autenticada.
func GetToken(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyToken).(string)
	return val
}

// GetPermissoes recupera as tags de permissão do contexto.
func GetPermissoes(ctx context.Context) []string {
	val, _ := ctx.Value(ContextKeyPermissoes).([]string)
	return val
}

// RequirePermissao garante que a sessão carrega ao menos uma das tags.
func RequirePermissao(tags ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atuais := GetPermissoes(r.Context())
			for _, tag := range atuais {
				for _, exigida := range tags {
					if strings.EqualFold(tag, exigida) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			writeError(w, http.StatusForbidden, "FORBIDDEN", "permissão insuficiente")
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
