package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	DBDSN           string
	RedisURL        string
	TokenSecret     string
	TokenTTL        time.Duration
	ResetActionTTL  time.Duration
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	MailerURL       string
	MailerKey       string
	MailerFrom      string
	AppBaseURL      string
	AnaliseURL      string
	AnaliseKey      string
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	// REDIS_URL é opcional: sem Redis a revogação de sessões fica em memória.
	cfg.RedisURL = getEnv("REDIS_URL", "")

	cfg.TokenSecret = strings.TrimSpace(getEnv("TOKEN_SECRET", ""))
	if len(cfg.TokenSecret) < 32 {
		return nil, errors.New("TOKEN_SECRET deve ter pelo menos 32 caracteres")
	}

	tokenTTL, err := parseDurationEnv("TOKEN_TTL", 2*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.TokenTTL = tokenTTL

	resetTTL, err := parseDurationEnv("RESET_ACTION_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.ResetActionTTL = resetTTL

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	cfg.MailerURL = strings.TrimSpace(getEnv("MAILER_URL", ""))
	cfg.MailerKey = strings.TrimSpace(getEnv("MAILER_KEY", ""))
	cfg.MailerFrom = strings.TrimSpace(getEnv("MAILER_FROM", "nao-responda@vitaltrack.com.br"))

	cfg.AppBaseURL = strings.TrimSpace(getEnv("APP_BASE_URL", "http://localhost:5173"))

	cfg.AnaliseURL = strings.TrimSpace(getEnv("ANALISE_URL", ""))
	cfg.AnaliseKey = strings.TrimSpace(getEnv("ANALISE_KEY", ""))

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
