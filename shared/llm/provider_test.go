package llm

import (
	"errors"
	"testing"

	"github.com/onsi/gomega"
)

func TestNewSelectsProvider(t *testing.T) {
	g := gomega.NewWithT(t)

	p, err := New(ProviderOpenAI, "k", "")
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(p.Name()).To(gomega.Equal(ProviderOpenAI))

	p, err = New(ProviderAnthropic, "k", "")
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(p.Name()).To(gomega.Equal(ProviderAnthropic))

	_, err = New("mistral", "k", "")
	g.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("unsupported provider")))

	_, err = New(ProviderOpenAI, "", "")
	g.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("API key")))
}

func TestFailureFallsBackToCauseMessage(t *testing.T) {
	g := gomega.NewWithT(t)

	cause := errors.New("dial tcp: connection refused")
	res := Failure(ProviderOpenAI, "", cause)

	g.Expect(res.OK()).To(gomega.BeFalse())
	g.Expect(res.Err.Error()).To(gomega.Equal("dial tcp: connection refused"))
	g.Expect(errors.Is(res.Err, cause)).To(gomega.BeTrue())
}

func TestStripFences(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(StripFences("```json\n[1,2]\n```")).To(gomega.Equal("[1,2]"))
	g.Expect(StripFences("  [1]  ")).To(gomega.Equal("[1]"))
	g.Expect(StripFences("~~~\nplain\n~~~\n")).To(gomega.Equal("plain"))
}
