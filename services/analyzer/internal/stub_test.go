package internal

import (
	"context"
	"net"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/trendsniper/trendsniper/shared/llm"
)

// stubProvider records requests and answers with a canned Result.
type stubProvider struct {
	mu       sync.Mutex
	result   llm.Result
	requests []llm.Request
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req llm.Request) llm.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.result
}

func (s *stubProvider) last() llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func (s *stubProvider) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return p.err
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func testConfig() Config {
	return Config{
		APIKey:       "sk-test",
		Provider:     "stub",
		Model:        "gpt-4",
		Host:         "127.0.0.1",
		Port:         "0",
		LicenseCodes: []string{"PURL2024"},
	}
}

// fakeTailer hands out a prepared delivery channel.
type fakeTailer struct {
	deliveries chan amqp.Delivery
	err        error

	mu       sync.Mutex
	patterns []string
}

func (f *fakeTailer) Tail(pattern string) (<-chan amqp.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, pattern)
	if f.err != nil {
		return nil, f.err
	}
	return f.deliveries, nil
}

func (f *fakeTailer) tailed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.patterns...)
}

// freePort reserves an ephemeral port on loopback and releases it.
func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	_, port, _ := net.SplitHostPort(l.Addr().String())
	return port
}
