package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/bemestar/internal/auth"
	"github.com/vitaltrack/bemestar/internal/cliente"
	"github.com/vitaltrack/bemestar/internal/config"
	"github.com/vitaltrack/bemestar/internal/db"
	"github.com/vitaltrack/bemestar/internal/mailer"
)

// CLI de onboarding: cria empresa, administrador e permissões iniciais sem
// passar pela API.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config inválida")
	}

	var (
		empresaNome = flag.String("empresa", "", "nome da empresa")
		cnpj        = flag.String("cnpj", "", "CNPJ (opcional)")
		adminNome   = flag.String("admin", "", "nome do administrador")
		adminEmail  = flag.String("email", "", "e-mail do administrador")
	)
	flag.Parse()

	if *empresaNome == "" || *adminNome == "" || *adminEmail == "" {
		flag.Usage()
		log.Fatal().Err(errors.New("empresa, admin e email são obrigatórios")).Msg("argumentos insuficientes")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	var sender mailer.Sender = mailer.LogSender{}
	if cfg.MailerURL != "" {
		sender, err = mailer.NewHTTPSender(cfg.MailerURL, cfg.MailerKey, cfg.MailerFrom)
		if err != nil {
			log.Fatal().Err(err).Msg("mailer inválido")
		}
	}
	mailerService := mailer.NewService(sender, mailer.NewRepository(pool))

	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	service := cliente.NewService(pool, tokens, mailerService, 0, cfg.AppBaseURL)

	input := cliente.OnboardInput{
		EmpresaNome: *empresaNome,
		AdminNome:   *adminNome,
		AdminEmail:  *adminEmail,
	}
	if *cnpj != "" {
		input.CNPJ = cnpj
	}

	result, err := service.Onboard(ctx, input)
	if err != nil {
		log.Fatal().Err(err).Msg("onboarding falhou")
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}
