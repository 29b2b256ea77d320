// Package snapshot requests the current control-surface state from a running
// midibridge server.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/leandrodaf/midibridge/internal/ipc"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/leandrodaf/midibridge/sdk/surface"
)

// Request performs one request/response round trip and decodes the reply.
//
// It fails with contracts.ErrConnection when the channel cannot be opened or
// written, and with contracts.ErrSizeMismatch when the reply is not exactly
// surface.Size bytes. A State is only returned for a complete reply.
func Request(ctx context.Context, opts ...Option) (surface.State, error) {
	raw, err := RequestRaw(ctx, opts...)
	if err != nil {
		return surface.State{}, err
	}
	return surface.Deserialize(raw)
}

// RequestRaw is Request without decoding: it returns exactly surface.Size bytes or an error.
func RequestRaw(ctx context.Context, opts ...Option) ([]byte, error) {
	options := applyDefaultOptions(opts...)
	log := options.Logger

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	conn, err := ipc.Dial(ctx, options.Address)
	if err != nil {
		log.Debug("snapshot dial failed",
			log.Field().String("address", options.Address),
			log.Field().Error("error", err))
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		// Unblocks reads on transports without deadline support.
		_ = conn.Close()
	})
	defer stop()

	if _, err := conn.Write([]byte{RequestByte}); err != nil {
		return nil, fmt.Errorf("%w: write request: %v", contracts.ErrConnection, err)
	}

	return readReply(conn)
}

// readReply reads the fixed-size reply and checks that nothing follows it.
func readReply(r io.Reader) ([]byte, error) {
	buf := make([]byte, surface.Size)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &contracts.SizeMismatchError{Got: n, Want: surface.Size}
		}
		return nil, fmt.Errorf("%w: read snapshot after %d bytes: %v", contracts.ErrConnection, n, err)
	}

	// The server closes right after the reply; extra bytes mean the two sides
	// disagree on the layout.
	var extra [1]byte
	if m, _ := r.Read(extra[:]); m > 0 {
		return nil, &contracts.SizeMismatchError{Got: surface.Size + m, Want: surface.Size}
	}
	return buf, nil
}
