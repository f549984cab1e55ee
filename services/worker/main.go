// worker consumes generate.requested jobs, loads the referenced record,
// generates its content with the configured provider, stores the result,
// and publishes generate.complete or generate.failed.
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/forge-ai/promptable"
	"github.com/forge-ai/promptable/config"
	"github.com/forge-ai/promptable/services/worker/internal"
	"github.com/forge-ai/promptable/shared/events"
	"github.com/forge-ai/promptable/shared/mq"
	"github.com/forge-ai/promptable/store"
	"github.com/forge-ai/promptable/templates"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	_ = godotenv.Load()

	wcfg := internal.ConfigFromEnv()
	cfg := config.FromEnv()
	cfg.Logger = log.Logger
	if wcfg.ConfigFile != "" {
		if err := cfg.LoadFile(wcfg.ConfigFile); err != nil {
			log.Fatal().Err(err).Str("path", wcfg.ConfigFile).Msg("load config file")
		}
	}

	templates.Default.SetLogger(log.Logger)
	if err := templates.Default.Load(wcfg.TemplatesPath); err != nil {
		log.Fatal().Err(err).Str("path", wcfg.TemplatesPath).Msg("load templates")
	}

	client := promptable.New(cfg)
	bindings, err := loadBindings(client, wcfg.RecordTypes)
	if err != nil {
		log.Fatal().Err(err).Msg("record types")
	}

	var loc promptable.Locator
	switch wcfg.Store {
	case internal.StoreRedis:
		r := store.NewRedis(wcfg.RedisAddr, wcfg.RedisPassword, wcfg.RedisDB, bindings)
		defer r.Close()
		loc = r
	default:
		if wcfg.SupabaseURL == "" {
			log.Fatal().Msg("SUPABASE_URL required for the supabase record store")
		}
		loc = store.NewSupabase(wcfg.SupabaseURL, wcfg.SupabaseKey, bindings)
	}

	broker, err := mq.New(wcfg.AMQPURL)
	if err != nil {
		log.Fatal().Err(err).Msg("mq connect")
	}
	defer broker.Close()

	deliveries, err := broker.Subscribe("svc.worker", events.GenerateRequested, wcfg.Workers)
	if err != nil {
		log.Fatal().Err(err).Msg("subscribe")
	}

	log.Info().
		Str("provider", cfg.Provider).
		Str("store", wcfg.Store).
		Int("record_types", len(bindings)).
		Int("workers", wcfg.Workers).
		Msg("worker started")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; cancel() }()

	h := internal.NewHandler(loc, broker, log.Logger)

	// Fan-out: every worker reads from the same delivery channel.
	var wg sync.WaitGroup
	for i := 0; i < wcfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						return
					}
					if err := h.Handle(ctx, d.Body); err != nil {
						log.Error().Err(err).Msg("job failed")
						d.Nack(false, false)
					} else {
						d.Ack(false)
					}
				}
			}
		}()
	}
	wg.Wait()
}

func loadBindings(client *promptable.Client, recordTypes string) (store.Bindings, error) {
	types, err := internal.ParseRecordTypes(recordTypes)
	if err != nil {
		return nil, err
	}
	out := make(store.Bindings, len(types))
	for _, rt := range types {
		p, err := client.UseTemplate(rt.Template)
		if err != nil {
			return nil, err
		}
		out[rt.Name] = store.Binding{Table: rt.Table, Prompt: p}
	}
	return out, nil
}
