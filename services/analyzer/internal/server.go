package internal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/trendsniper/trendsniper/shared/events"
	"github.com/trendsniper/trendsniper/shared/llm"
	"github.com/trendsniper/trendsniper/shared/mq"
	"golang.org/x/sync/errgroup"
)

const Version = "0.3.0"

// Server owns the HTTP API, the event hub and the optional broker.
type Server struct {
	cfg      Config
	analyzer *Analyzer
	hub      *Hub
	broker   *mq.Broker // nil without AMQP_URL
	feed     tailer     // source for the hub when events go through the broker
	events   *emitter
}

// tailer is the consuming side of mq.Broker.
type tailer interface {
	Tail(pattern string) (<-chan amqp.Delivery, error)
}

// NewServer wires the configured provider and, when AMQP_URL is set, connects
// to RabbitMQ.
func NewServer(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	provider, err := llm.New(cfg.Provider, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	s := newServer(cfg, provider, nil)
	if cfg.AMQPURL != "" {
		broker, err := mq.New(cfg.AMQPURL)
		if err != nil {
			return nil, fmt.Errorf("mq connect: %w", err)
		}
		s.broker = broker
		s.feed = broker
		s.events.pub = broker
	}
	return s, nil
}

func newServer(cfg Config, provider llm.Provider, pub Publisher) *Server {
	hub := NewHub()
	return &Server{
		cfg:      cfg,
		analyzer: NewAnalyzer(provider, cfg.Model, cfg.Timeout),
		hub:      hub,
		events:   &emitter{pub: pub, hub: hub},
	}
}

// Handler returns the full HTTP stack: routes, CORS and request logging.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) Close() {
	if s.broker != nil {
		s.broker.Close()
	}
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	var deliveries <-chan amqp.Delivery
	if s.feed != nil {
		var err error
		deliveries, err = s.feed.Tail(events.AnalysisAll)
		if err != nil {
			return fmt.Errorf("tail %s: %w", events.AnalysisAll, err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.hub.Run(ctx) })
	g.Go(func() error { return s.serveAPI(ctx) })
	if deliveries != nil {
		g.Go(func() error {
			s.relay(ctx, deliveries)
			return nil
		})
	}

	return g.Wait()
}

// relay pushes broker deliveries to the hub, dropping anything that is not an
// analysis envelope. A closed feed only stops the relay; the API keeps serving.
func (s *Server) relay(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Warn().Msg("event feed closed")
				return
			}
			env, err := events.UnwrapEnvelope(d.Body)
			if err != nil || !env.Analysis() {
				log.Warn().Err(err).Str("routing_key", d.RoutingKey).Msg("dropping foreign event")
				continue
			}
			s.hub.BroadcastRaw(d.Body)
		}
	}
}

func (s *Server) serveAPI(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()

	log.Info().Str("addr", srv.Addr).Msg("listening")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
