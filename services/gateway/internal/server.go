package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/forge-ai/promptable"
	"github.com/forge-ai/promptable/config"
	"github.com/forge-ai/promptable/providers"
	"github.com/forge-ai/promptable/shared/events"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Subscriber is the consuming side of the broker.
type Subscriber interface {
	Subscribe(queueName, pattern string, prefetch int) (<-chan amqp.Delivery, error)
}

// Server exposes synchronous generation, job submission and a websocket
// relay of job results.
type Server struct {
	cfg    Config
	client *promptable.Client
	queue  promptable.Enqueuer
	sub    Subscriber
	hub    *Hub
	logger zerolog.Logger

	mu      sync.Mutex
	clients map[string]*promptable.Client
}

// NewServer wires the gateway. queue and sub may be nil, in which case job
// submission answers 503 and nothing is relayed.
func NewServer(cfg Config, client *promptable.Client, queue promptable.Enqueuer, sub Subscriber) *Server {
	logger := client.Config().Logger
	return &Server{
		cfg:     cfg,
		client:  client,
		queue:   queue,
		sub:     sub,
		hub:     NewHub(logger),
		logger:  logger,
		clients: make(map[string]*promptable.Client),
	}
}

// Run serves until ctx is cancelled or a component fails.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.hub.Run(ctx) })
	g.Go(func() error { return s.serveAPI(ctx) })

	if s.sub != nil {
		for _, sub := range []struct{ queue, pattern string }{
			{"gateway.generate.complete", events.GenerateComplete},
			{"gateway.generate.failed", events.GenerateFailed},
		} {
			deliveries, err := s.sub.Subscribe(sub.queue, sub.pattern, s.cfg.RelayPrefetch)
			if err != nil {
				return fmt.Errorf("subscribe %s: %w", sub.queue, err)
			}
			g.Go(func() error { return s.relay(ctx, deliveries) })
		}
	}

	return g.Wait()
}

func (s *Server) relay(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			env, err := events.UnwrapEnvelope(d.Body)
			if err != nil {
				s.logger.Warn().Err(err).Msg("dropping malformed event")
				d.Nack(false, false)
				continue
			}
			s.logger.Debug().Str("key", env.RoutingKey).Str("id", env.ID).Msg("relaying event")
			s.hub.Broadcast(d.Body)
			d.Ack(false)
		}
	}
}

// clientFor returns the client for a per-request provider choice. Clients
// share the configured registry and are built once per provider.
func (s *Server) clientFor(provider string) (*promptable.Client, error) {
	if provider == "" {
		return s.client, nil
	}
	id, ok := config.ParseProvider(provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s. supported providers: %s",
			providers.ErrUnknownProvider, provider, strings.Join(providers.Available(), ", "))
	}
	if cur, _ := config.ParseProvider(s.client.Config().Provider); id == cur {
		return s.client, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[id]; ok {
		return c, nil
	}
	cfg := *s.client.Config()
	cfg.Provider = id
	c := promptable.New(&cfg, promptable.WithRegistry(s.client.Registry()))
	s.clients[id] = c
	return c, nil
}
