package keystore

import (
	"github.com/charmbracelet/log"

	"dalkeystore/internal/domain"
	"dalkeystore/internal/logging"
	"dalkeystore/internal/secmem"
)

// Options control registry behavior.
type Options struct {
	// Allocator supplies slot key buffers. Defaults to secmem.Heap.
	Allocator domain.Allocator

	// Logger receives lifecycle events at debug level. Defaults to a
	// discarding logger.
	Logger *log.Logger

	// DuplicateTickets disables the uniqueness check on AllocateContext.
	// Lookups by ticket then return the most recently allocated match.
	DuplicateTickets bool
}

// Option modifies Options.
type Option func(*Options)

// WithAllocator sets the key buffer allocator.
func WithAllocator(a domain.Allocator) Option { return func(o *Options) { o.Allocator = a } }

// WithLogger sets the lifecycle logger.
func WithLogger(l *log.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithDuplicateTickets lets several live contexts share one ticket.
func WithDuplicateTickets() Option { return func(o *Options) { o.DuplicateTickets = true } }

func buildOptions(opts []Option) Options {
	var o Options
	for _, fn := range opts {
		fn(&o)
	}
	if o.Allocator == nil {
		o.Allocator = secmem.Heap{}
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}
