// gateway is the public HTTP face of promptable.
// It renders and generates prompts synchronously, accepts deferred
// generation jobs (published as generate.requested), and relays
// generate.complete / generate.failed events to browsers over WebSocket.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/forge-ai/promptable"
	"github.com/forge-ai/promptable/config"
	"github.com/forge-ai/promptable/services/gateway/internal"
	"github.com/forge-ai/promptable/shared/mq"
	"github.com/forge-ai/promptable/templates"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "1" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	_ = godotenv.Load()

	gcfg := internal.ConfigFromEnv()
	cfg := config.FromEnv()
	cfg.Logger = log.Logger
	if gcfg.ConfigFile != "" {
		if err := cfg.LoadFile(gcfg.ConfigFile); err != nil {
			log.Fatal().Err(err).Str("path", gcfg.ConfigFile).Msg("load config file")
		}
	}

	templates.Default.SetLogger(log.Logger)
	if err := templates.Default.Load(gcfg.TemplatesPath); err != nil {
		log.Fatal().Err(err).Str("path", gcfg.TemplatesPath).Msg("load templates")
	}

	broker, err := mq.New(gcfg.AMQPURL)
	if err != nil {
		log.Fatal().Err(err).Msg("mq connect")
	}
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info().Msg("shutdown signal, stopping gateway")
		cancel()
	}()

	srv := internal.NewServer(gcfg, promptable.New(cfg), mq.NewJobQueue(broker), broker)

	log.Info().
		Str("provider", cfg.Provider).
		Str("api_port", gcfg.APIPort).
		Int("templates", len(templates.Default.List())).
		Msg("gateway online")

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("gateway exited")
	}
}
