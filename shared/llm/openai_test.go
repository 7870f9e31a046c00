package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onsi/gomega"
)

type chatBody struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestOpenAIProviderSendsSingleUserMessage(t *testing.T) {
	g := gomega.NewWithT(t)

	var got chatBody
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Product: WidgetPro  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL+"/v1")
	res := p.Complete(context.Background(), Request{Model: "gpt-4", Prompt: "hello ad", Temperature: 0.3})

	g.Expect(res.OK()).To(gomega.BeTrue())
	g.Expect(res.Text).To(gomega.Equal("  Product: WidgetPro  "))
	g.Expect(path).To(gomega.Equal("/v1/chat/completions"))
	g.Expect(auth).To(gomega.Equal("Bearer sk-test"))
	g.Expect(got.Model).To(gomega.Equal("gpt-4"))
	g.Expect(got.Temperature).To(gomega.BeNumerically("~", 0.3, 1e-6))
	g.Expect(got.Messages).To(gomega.HaveLen(1))
	g.Expect(got.Messages[0].Role).To(gomega.Equal("user"))
	g.Expect(got.Messages[0].Content).To(gomega.Equal("hello ad"))
}

func TestOpenAIProviderSurfacesAPIMessage(t *testing.T) {
	g := gomega.NewWithT(t)

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer srv.Close()

	res := NewOpenAIProvider("sk-test", srv.URL+"/v1").Complete(context.Background(), Request{Model: "gpt-4", Prompt: "x"})

	g.Expect(res.OK()).To(gomega.BeFalse())
	g.Expect(res.Err.Error()).To(gomega.Equal("rate limit exceeded"))
	g.Expect(res.Err.Provider).To(gomega.Equal(ProviderOpenAI))
	g.Expect(res.Err.Cause).To(gomega.HaveOccurred())
	g.Expect(calls).To(gomega.Equal(1))
}

func TestOpenAIProviderNoChoices(t *testing.T) {
	g := gomega.NewWithT(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[]}`))
	}))
	defer srv.Close()

	res := NewOpenAIProvider("sk-test", srv.URL+"/v1").Complete(context.Background(), Request{Model: "gpt-4", Prompt: "x"})

	g.Expect(res.OK()).To(gomega.BeFalse())
	g.Expect(res.Err.Error()).To(gomega.ContainSubstring("no choices"))
}

func TestOpenAIProviderNetworkFailure(t *testing.T) {
	g := gomega.NewWithT(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := NewOpenAIProvider("sk-test", url+"/v1").Complete(context.Background(), Request{Model: "gpt-4", Prompt: "x"})

	g.Expect(res.OK()).To(gomega.BeFalse())
	g.Expect(res.Err.Message).NotTo(gomega.BeEmpty())
}
