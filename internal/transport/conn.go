// Package transport carries UCI text lines between the analysis session and
// an engine, either over an arbitrary reader/writer pair or a child process.
package transport

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// maxLineSize bounds a single engine output line. Long PVs at high depth
// with many multiPV lines can exceed bufio's 64KiB default.
const maxLineSize = 1 << 20

// Conn is a line-oriented connection to an engine. Send is safe for
// concurrent use; ReadLines must only run once at a time.
type Conn struct {
	mu     sync.Mutex
	w      *bufio.Writer
	r      io.Reader
	closed bool
	log    zerolog.Logger
}

// Option configures a Conn or Process.
type Option func(*options)

type options struct {
	log  zerolog.Logger
	args []string
}

// WithLogger traces every line in both directions at trace level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithArgs passes command-line arguments to the engine process.
func WithArgs(args ...string) Option {
	return func(o *options) {
		o.args = args
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewConn returns a connection reading engine output from r and writing
// commands to w.
func NewConn(r io.Reader, w io.Writer, opts ...Option) *Conn {
	o := buildOptions(opts)
	return &Conn{
		w:   bufio.NewWriter(w),
		r:   r,
		log: o.log,
	}
}

// Send writes cmd followed by a newline and flushes it.
func (c *Conn) Send(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return &errors.EngineError{Err: errors.ErrEngineClosed, Op: "send"}
	}
	c.log.Trace().Str("dir", ">").Msg(cmd)
	if _, err := c.w.WriteString(cmd + "\n"); err != nil {
		return &errors.EngineError{Err: err, Op: "send"}
	}
	if err := c.w.Flush(); err != nil {
		return &errors.EngineError{Err: err, Op: "send"}
	}
	return nil
}

// ReadLines calls fn for every line of engine output, in order, until the
// reader is exhausted (nil error), fails, or ctx is done. fn runs on the
// calling goroutine.
func (c *Conn) ReadLines(ctx context.Context, fn func(line string)) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		sc := bufio.NewScanner(c.r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-stop:
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-lines:
			c.log.Trace().Str("dir", "<").Msg(line)
			fn(line)
		case err := <-errc:
			if err != nil {
				return &errors.EngineError{Err: err, Op: "read"}
			}
			return nil
		}
	}
}

// markClosed makes further Sends fail.
func (c *Conn) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
