package editor

import (
	"context"
	"errors"
	"time"
)

// ErrLoopStopped is returned by [Loop.Do] once the loop has exited.
var ErrLoopStopped = errors.New("editor: loop stopped")

// Loop drives an editor from a single goroutine: fixed-step ticks and
// commands submitted from other goroutines are serialised through one
// select.
type Loop struct {
	ed   *Editor
	tick time.Duration
	cmds chan command
	done chan struct{}
}

type command struct {
	fn   func(*Editor)
	done chan struct{}
}

// NewLoop returns a loop ticking ed every tick.
func NewLoop(ed *Editor, tick time.Duration) *Loop {
	return &Loop{
		ed:   ed,
		tick: tick,
		cmds: make(chan command),
		done: make(chan struct{}),
	}
}

// Run ticks until ctx is cancelled, then destroys the editor. It returns
// nil on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	defer func() { _ = l.ed.Destroy() }()

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.ed.log.Info("editor: loop stopped")
			return nil
		case <-ticker.C:
			l.ed.Tick()
		case cmd := <-l.cmds:
			cmd.fn(l.ed)
			close(cmd.done)
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*Editor)) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case l.cmds <- cmd:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cmd.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
