package rfscall

import "time"

// Options configures the stream transport and framer. The zero value (via
// defaultOptions) blocks by waiting on iox.ErrWouldBlock with a cooperative
// yield, matching the teacher library's RetryDelay policy.
type Options struct {
	// ReadLimit records a maximum frame payload size in bytes. None of
	// WriteAll, BlockRead or SendMessage consult it; ExtractMessage enforces
	// only the readLimit passed to it as an argument.
	ReadLimit int

	// RetryDelay controls how WriteAll/BlockRead react to
	// iox.ErrWouldBlock from the underlying connection (DrainRead takes no
	// options and always stops at a would-block):
	//   - negative: nonblocking; return ErrWouldBlock immediately.
	//   - zero: cooperative yield (runtime.Gosched) and retry.
	//   - positive: sleep for the duration and retry.
	RetryDelay time.Duration
}

var defaultOptions = Options{
	ReadLimit:  0,
	RetryDelay: 0, // block by yielding; the server/client loops want to wait
}

// Option configures Options.
type Option func(*Options)

// WithReadLimit sets Options.ReadLimit. The framer does not read it: the
// limit ExtractMessage applies is the readLimit argument of that call.
func WithReadLimit(limit int) Option {
	return func(o *Options) { o.ReadLimit = limit }
}

// WithRetryDelay sets the retry/wait policy used when the underlying
// connection returns iox.ErrWouldBlock.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}

// WithBlock enables cooperative blocking (yield-and-retry) on would-block.
func WithBlock() Option {
	return func(o *Options) { o.RetryDelay = 0 }
}

// WithNonblock forces non-blocking behavior: return ErrWouldBlock immediately
// instead of retrying.
func WithNonblock() Option {
	return func(o *Options) { o.RetryDelay = -1 }
}

func resolveOptions(opts ...Option) Options {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
