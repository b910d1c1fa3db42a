// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session drives interactive command-line programs through a fixed,
// ordered sequence of prompts and replies. A script either completes or fails
// with a single *Error; there is no branching.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	// ErrTimeout is the Cause when the script's overall deadline passes.
	ErrTimeout = errors.New("timed out waiting for output")
	// ErrUnexpectedPrompt is the Cause when a prompt from Script.Unexpected
	// shows up before the awaited one.
	ErrUnexpectedPrompt = errors.New("unexpected prompt")
	// ErrPrematureEOF is the Cause when output ends before a prompt arrives.
	ErrPrematureEOF = errors.New("output ended before prompt")
)

// Step waits for Expect to appear in the output and then sends Reply
// followed by a newline. An empty Reply sends a bare newline, which accepts
// the program's default.
type Step struct {
	Expect string
	Reply  string
}

// Script is an ordered list of steps. After the last step the program must
// close its output. Timeout bounds the whole run; zero means no limit
// beyond ctx.
type Script struct {
	Steps      []Step
	Unexpected []string
	Timeout    time.Duration
}

// Error reports where a script stopped. Step is the zero-based index of the
// step being awaited, or len(Steps) while waiting for end of output.
type Error struct {
	Step   int
	Expect string
	Cause  error
	Output string
}

func (e *Error) Error() string {
	if e.Expect == "" {
		return fmt.Sprintf("step %d (end of output): %v", e.Step, e.Cause)
	}
	return fmt.Sprintf("step %d awaiting %q: %v", e.Step, e.Expect, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

type chunk struct {
	data []byte
	err  error
}

// Run plays script against conn. The caller owns conn and must close it
// once Run returns so the background reader exits.
func Run(ctx context.Context, conn io.ReadWriter, script Script) error {
	if script.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, script.Timeout)
		defer cancel()
	}

	chunks := make(chan chunk, 16)
	done := make(chan struct{})
	defer close(done)
	go readLoop(conn, chunks, done)

	var out strings.Builder
	offset := 0
	step := 0
	var readErr error

	fail := func(cause error) error {
		e := &Error{Step: step, Cause: cause, Output: out.String()}
		if step < len(script.Steps) {
			e.Expect = script.Steps[step].Expect
		}
		return e
	}

	for {
		// Consume every prompt already buffered before blocking again.
		for step < len(script.Steps) {
			pending := out.String()[offset:]
			want := script.Steps[step].Expect
			idx := strings.Index(pending, want)

			if bad, found := firstUnexpected(pending, script.Unexpected, idx); found {
				return fail(fmt.Errorf("%w: %q", ErrUnexpectedPrompt, bad))
			}
			if idx < 0 {
				break
			}
			offset += idx + len(want)
			if _, err := io.WriteString(conn, script.Steps[step].Reply+"\n"); err != nil {
				return fail(fmt.Errorf("sending reply: %w", err))
			}
			step++
		}

		if readErr != nil {
			if step < len(script.Steps) {
				if errors.Is(readErr, io.EOF) {
					return fail(ErrPrematureEOF)
				}
				return fail(fmt.Errorf("%w: %v", ErrPrematureEOF, readErr))
			}
			// Output closed after the last reply. Any read error counts as
			// closed since ptys report EIO on hangup.
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fail(ErrTimeout)
			}
			return fail(ctx.Err())
		case c := <-chunks:
			out.Write(c.data)
			readErr = c.err
		}
	}
}

// firstUnexpected reports an unexpected prompt appearing in pending ahead of
// position limit (or anywhere, when limit is negative).
func firstUnexpected(pending string, unexpected []string, limit int) (string, bool) {
	for _, u := range unexpected {
		if u == "" {
			continue
		}
		i := strings.Index(pending, u)
		if i < 0 {
			continue
		}
		if limit < 0 || i < limit {
			return u, true
		}
	}
	return "", false
}

func readLoop(r io.Reader, chunks chan<- chunk, done <-chan struct{}) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		c := chunk{data: append([]byte(nil), buf[:n]...), err: err}
		if n == 0 && err == nil {
			continue
		}
		select {
		case chunks <- c:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}
