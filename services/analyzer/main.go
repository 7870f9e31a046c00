// analyzer is the TrendSniper backend.
// It accepts ad or product text over HTTP, asks a completion model whether it
// is a real ad or winning product, and relays the model's answer as JSON.
// Finished analyses are published as analysis.* events (RabbitMQ when
// AMQP_URL is set) and relayed to browsers over WebSocket.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
