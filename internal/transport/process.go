package transport

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// closeGrace is how long Close waits for the engine to exit after "quit"
// before killing it.
const closeGrace = 2 * time.Second

// Process is an engine running as a child process, speaking UCI on its
// standard input and output. Standard error is logged at debug level.
type Process struct {
	*Conn

	path   string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *io.PipeReader
	group  *errgroup.Group
	log    zerolog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Start launches the engine at path. The process is killed if ctx is
// cancelled before Close.
func Start(ctx context.Context, path string, opts ...Option) (*Process, error) {
	o := buildOptions(opts)
	cmd := exec.CommandContext(ctx, path, o.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, startError(path, err)
	}
	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	cmd.Stdout = outW
	cmd.Stderr = errW

	if err := cmd.Start(); err != nil {
		return nil, startError(path, err)
	}

	p := &Process{
		Conn:   NewConn(outR, stdin, opts...),
		path:   path,
		cmd:    cmd,
		stdin:  stdin,
		stdout: outR,
		group:  &errgroup.Group{},
		log:    o.log.With().Str("engine", path).Logger(),
	}
	p.group.Go(func() error {
		sc := bufio.NewScanner(errR)
		for sc.Scan() {
			p.log.Debug().Str("stderr", sc.Text()).Msg("engine stderr")
		}
		return nil
	})
	p.group.Go(func() error {
		err := cmd.Wait()
		outW.Close()
		errW.Close()
		if err != nil {
			return &errors.EngineError{Err: err, Op: "wait", Path: path}
		}
		return nil
	})
	p.log.Info().Int("pid", cmd.Process.Pid).Msg("engine started")
	return p, nil
}

func startError(path string, err error) error {
	return &errors.EngineError{Err: errors.Join(errors.ErrEngineStart, err), Op: "start", Path: path}
}

// Close asks the engine to quit and waits for it to exit, killing it if it
// does not within a short grace period. It is safe to call more than once.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		_ = p.Send("quit")
		p.markClosed()
		_ = p.stdin.Close()

		done := make(chan error, 1)
		go func() { done <- p.group.Wait() }()

		select {
		case p.closeErr = <-done:
		case <-time.After(closeGrace):
			p.log.Warn().Msg("engine did not quit, killing")
			_ = p.cmd.Process.Kill()
			// Unblock output still being copied with no reader.
			_ = p.stdout.Close()
			p.closeErr = <-done
		}
		p.log.Info().Err(p.closeErr).Msg("engine stopped")
	})
	return p.closeErr
}

// Path returns the engine executable.
func (p *Process) Path() string {
	return p.path
}
