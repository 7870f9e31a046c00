package internal

import (
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/trendsniper/trendsniper/shared/llm"
)

type Config struct {
	APIKey       string
	Provider     string
	Model        string
	BaseURL      string
	Timeout      time.Duration // zero means no explicit deadline
	Host         string
	Port         string
	Debug        bool
	AMQPURL      string
	LicenseCodes []string
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:       env("OPENAI_API_KEY", env("LLM_API_KEY", "")),
		Provider:     env("LLM_PROVIDER", llm.ProviderOpenAI),
		Model:        env("LLM_MODEL", "gpt-4"),
		BaseURL:      env("LLM_BASE_URL", ""),
		Timeout:      time.Duration(envInt("LLM_TIMEOUT", 0)) * time.Second,
		Host:         env("HOST", "127.0.0.1"),
		Port:         env("PORT", "5000"),
		Debug:        envBool("DEBUG", true),
		AMQPURL:      env("AMQP_URL", ""),
		LicenseCodes: envList("LICENSE_CODES", []string{"PURL2024"}),
	}
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.Model == "" {
		return errors.New("LLM_MODEL cannot be empty")
	}
	if c.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func envList(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
