package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/leandrodaf/midibridge/internal/logger"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/leandrodaf/midibridge/sdk/snapshot"
	"github.com/leandrodaf/midibridge/sdk/surface"
)

func main() {
	log := logger.NewZapLogger()
	log.SetLevel(contracts.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	fmt.Println("Polling the bridge... Press Ctrl+C to exit.")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		state, err := snapshot.Request(ctx, snapshot.WithLogger(log))
		if err != nil {
			log.Error("Failed to request snapshot", log.Field().Error("error", err))
			continue
		}

		log.Info("Surface state",
			log.Field().Bool("play", state.Pressed(surface.Play)),
			log.Field().Bool("record", state.Pressed(surface.Record)),
			log.Field().Uint8("fader0", state.Value(surface.Fader(0))),
			log.Field().Uint8("knob0", state.Value(surface.Knob(0))),
		)
	}
}
