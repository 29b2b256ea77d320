package snapshot

import (
	"time"

	"github.com/leandrodaf/midibridge/internal/ipc"
	"github.com/leandrodaf/midibridge/internal/logger"
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// DefaultTimeout bounds a whole request when the caller's context has no deadline.
const DefaultTimeout = 2 * time.Second

// RequestByte is the byte sent to ask for a snapshot. The server does not interpret it.
const RequestByte byte = 0x01

// Options configures a snapshot request.
type Options struct {
	Address string           // IPC address; defaults to the platform default.
	Timeout time.Duration    // Applied when ctx has no deadline.
	Logger  contracts.Logger // Defaults to a no-op logger.
}

// Option modifies Options.
type Option func(*Options)

// WithAddress sets the socket path (or pipe name on Windows).
func WithAddress(address string) Option {
	return func(o *Options) {
		o.Address = address
	}
}

// WithTimeout sets the request timeout used when ctx has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l contracts.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func applyDefaultOptions(opts ...Option) Options {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Address == "" {
		options.Address = ipc.DefaultAddress()
	}
	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}
	if options.Logger == nil {
		options.Logger = logger.NewNopLogger()
	}
	return options
}
