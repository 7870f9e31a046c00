package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onsi/gomega"
)

func TestAnthropicProviderJoinsTextBlocks(t *testing.T) {
	g := gomega.NewWithT(t)

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",` +
			`"content":[{"type":"text","text":"Product: "},{"type":"text","text":"WidgetPro"}],` +
			`"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider("key", srv.URL+"/")
	res := p.Complete(context.Background(), Request{Model: "claude-test", Prompt: "hello ad", Temperature: 0.3})

	g.Expect(res.OK()).To(gomega.BeTrue())
	g.Expect(res.Text).To(gomega.Equal("Product: WidgetPro"))
	g.Expect(got["model"]).To(gomega.Equal("claude-test"))
	g.Expect(got["temperature"]).To(gomega.BeNumerically("~", 0.3, 1e-9))
}

func TestAnthropicProviderDoesNotRetry(t *testing.T) {
	g := gomega.NewWithT(t)

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"rate limit exceeded"}}`))
	}))
	defer srv.Close()

	res := NewAnthropicProvider("key", srv.URL+"/").Complete(context.Background(), Request{Model: "claude-test", Prompt: "x"})

	g.Expect(res.OK()).To(gomega.BeFalse())
	g.Expect(res.Err.Provider).To(gomega.Equal(ProviderAnthropic))
	g.Expect(res.Err.Message).NotTo(gomega.BeEmpty())
	g.Expect(calls).To(gomega.Equal(1))
}
