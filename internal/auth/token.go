package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenInvalid é retornado quando a assinatura não confere ou o token é ilegível.
	ErrTokenInvalid = errors.New("token inválido")
	// ErrTokenExpired é retornado quando o token passou da expiração.
	ErrTokenExpired = errors.New("token expirado")
)

// RefreshWindow define quanto tempo antes da expiração o token passa a pedir renovação.
const RefreshWindow = 5 * time.Minute

// SessionClaims representa as informações presentes em um token de sessão.
type SessionClaims struct {
	UID        string   `json:"uid"`
	Email      string   `json:"email"`
	Nome       string   `json:"nome"`
	Permissoes []string `json:"permissoes"`
	jwt.RegisteredClaims
}

// SessionData são os dados de negócio embutidos no token, sem campos de tempo.
type SessionData struct {
	UID        string   `json:"uid"`
	Email      string   `json:"email"`
	Nome       string   `json:"nome"`
	Permissoes []string `json:"permissoes"`
}

// TokenInfo agrega o token assinado e seus metadados decodificados.
type TokenInfo struct {
	Token        string      `json:"token"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	Data         SessionData `json:"data"`
	NeedsRefresh bool        `json:"needsRefresh"`
}

// TokenManager encapsula geração e validação de tokens de sessão.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager cria o gerenciador com segredo e TTL configurados.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL informa a validade padrão dos tokens emitidos.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Create assina um token HS256 com os dados da sessão e o TTL padrão.
func (m *TokenManager) Create(data SessionData) (*TokenInfo, error) {
	return m.CreateWithTTL(data, m.ttl)
}

// CreateWithTTL assina um token HS256 com validade específica.
func (m *TokenManager) CreateWithTTL(data SessionData, ttl time.Duration) (*TokenInfo, error) {
	if ttl <= 0 {
		ttl = m.ttl
	}

	now := time.Now().UTC()
	expires := now.Add(ttl)

	claims := SessionClaims{
		UID:        data.UID,
		Email:      data.Email,
		Nome:       data.Nome,
		Permissoes: data.Permissoes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   data.UID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, err
	}

	return &TokenInfo{
		Token:        signed,
		ExpiresAt:    expires,
		Data:         data,
		NeedsRefresh: ttl <= RefreshWindow,
	}, nil
}

// Verify confere assinatura e expiração e devolve as claims decodificadas.
func (m *TokenManager) Verify(tokenString string) (*SessionClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// NeedsRefresh indica se o token está a menos de RefreshWindow de expirar.
// Tokens ilegíveis também pedem renovação, forçando novo login quando necessário.
func (m *TokenManager) NeedsRefresh(tokenString string) bool {
	claims, err := m.decode(tokenString)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return time.Until(claims.ExpiresAt.Time) <= RefreshWindow
}

// RefreshIfNeeded reemite o token quando ele está perto de expirar.
// Devolve nil quando a renovação não é necessária. Os campos não vazios de
// extra substituem os dados correntes; iat/exp são sempre descartados e
// recalculados na reemissão.
func (m *TokenManager) RefreshIfNeeded(tokenString string, extra *SessionData) (*TokenInfo, error) {
	if !m.NeedsRefresh(tokenString) {
		return nil, nil
	}

	claims, err := m.decode(tokenString)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	data := SessionData{
		UID:        claims.UID,
		Email:      claims.Email,
		Nome:       claims.Nome,
		Permissoes: claims.Permissoes,
	}
	if extra != nil {
		if extra.UID != "" {
			data.UID = extra.UID
		}
		if extra.Email != "" {
			data.Email = extra.Email
		}
		if extra.Nome != "" {
			data.Nome = extra.Nome
		}
		if extra.Permissoes != nil {
			data.Permissoes = extra.Permissoes
		}
	}

	return m.Create(data)
}

// decode valida apenas a assinatura, ignorando expiração.
func (m *TokenManager) decode(tokenString string) (*SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
