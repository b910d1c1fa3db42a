// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hole runs the HOLE suite's helper binaries: sph_process, which
// turns a sphere file into dot-surface points, and qpt_conv, an interactive
// converter driven through a pseudo-terminal.
package hole

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/creack/pty"

	"github.com/pdiddy/holeviz/internal/session"
)

const (
	binSphProcess = "sph_process"
	binQptConv    = "qpt_conv"

	DefaultDotden  = 15
	MinDotden      = 5
	MaxDotden      = 30
	DefaultTimeout = 60 * time.Second
)

// Prompts printed by qpt_conv, in the order they appear.
const (
	PromptOption    = "Enter conversion option character"
	PromptInput     = "Please enter input binary hydra/quanta plot"
	PromptOutput    = "vmd format file"
	PromptLineWidth = "What width do you want lines to appear"
	// PromptOverwrite only appears when the output file already exists.
	PromptOverwrite = "Enter option"
)

// ErrNoOutput is returned when a tool exits cleanly but leaves no usable
// output file behind.
var ErrNoOutput = errors.New("no output produced")

// executor abstracts process execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	// Run executes name to completion and returns its stderr.
	Run(ctx context.Context, name string, args []string) (string, error)
	// Start launches name in dir attached to a terminal. wait reaps the
	// process after the terminal has been closed.
	Start(ctx context.Context, name, dir string) (conn io.ReadWriteCloser, wait func() error, err error)
}

// osExecutor is the production executor backed by os/exec and a pty.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// Start uses a pty because qpt_conv buffers its prompts when stdout is not a
// terminal.
func (o *osExecutor) Start(ctx context.Context, name, dir string) (io.ReadWriteCloser, func() error, error) {
	cmd := exec.CommandContext(ctx, name)
	cmd.Dir = dir
	f, err := pty.Start(cmd)
	if err != nil {
		return nil, nil, err
	}
	return f, cmd.Wait, nil
}

var defaultExec = &osExecutor{}

// Tools locates the helper binaries under Dir.
type Tools struct {
	Dir  string
	exec executor
}

// New returns Tools for the binaries installed in dir.
func New(dir string) *Tools {
	return &Tools{Dir: dir, exec: defaultExec}
}

func (t *Tools) executor() executor {
	if t.exec == nil {
		return defaultExec
	}
	return t.exec
}

func (t *Tools) path(bin string) string {
	return filepath.Join(t.Dir, bin)
}

// Available checks that both binaries exist and are executable.
func (t *Tools) Available() error {
	var missing []string
	for _, bin := range []string{binSphProcess, binQptConv} {
		if _, err := t.executor().LookPath(t.path(bin)); err != nil {
			missing = append(missing, t.path(bin))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("HOLE tools not found: %s", strings.Join(missing, ", "))
	}
	return nil
}

// SphProcess generates colored dot-surface points from a sphere file.
// dotden zero selects DefaultDotden.
func (t *Tools) SphProcess(ctx context.Context, sph, qpt string, dotden int) error {
	if dotden == 0 {
		dotden = DefaultDotden
	}
	if dotden < MinDotden || dotden > MaxDotden {
		return fmt.Errorf("dot density %d outside %d-%d", dotden, MinDotden, MaxDotden)
	}

	args := []string{"-dotden", fmt.Sprint(dotden), "-color", sph, qpt}
	slog.Debug("running sph_process", slog.String("sph", sph), slog.String("qpt", qpt), slog.Int("dotden", dotden))

	stderr, err := t.executor().Run(ctx, t.path(binSphProcess), args)
	if err != nil {
		if msg := strings.TrimSpace(stderr); msg != "" {
			return fmt.Errorf("running %s: %w: %s", binSphProcess, err, msg)
		}
		return fmt.Errorf("running %s: %w", binSphProcess, err)
	}
	if info, err := os.Stat(qpt); err != nil || info.Size() == 0 {
		return fmt.Errorf("%s: %w: %s", binSphProcess, ErrNoOutput, qpt)
	}
	return nil
}

// QptConvScript is the dialogue that converts a qpt file to VMD plot text
// using every default qpt_conv offers.
func QptConvScript(timeout time.Duration) session.Script {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return session.Script{
		Steps: []session.Step{
			{Expect: PromptOption, Reply: "D"},
			{Expect: PromptInput, Reply: ""},
			{Expect: PromptOutput, Reply: ""},
			{Expect: PromptLineWidth, Reply: ""},
		},
		Unexpected: []string{PromptOverwrite},
		Timeout:    timeout,
	}
}

// DefaultVMDPath is where qpt_conv writes when its defaults are accepted:
// the qpt file's stem with a .vmd_plot extension, beside the input.
func DefaultVMDPath(qpt string) string {
	stem := strings.TrimSuffix(filepath.Base(qpt), filepath.Ext(qpt))
	return filepath.Join(filepath.Dir(qpt), stem+".vmd_plot")
}

// QptToVMD converts qpt to VMD plot text at vmd. Any stale default output is
// removed first so qpt_conv never asks to overwrite.
func (t *Tools) QptToVMD(ctx context.Context, qpt, vmd string, timeout time.Duration) error {
	defaultOut := DefaultVMDPath(qpt)
	if err := os.Remove(defaultOut); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stale %s: %w", defaultOut, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn, wait, err := t.executor().Start(runCtx, t.path(binQptConv), filepath.Dir(qpt))
	if err != nil {
		return fmt.Errorf("starting %s: %w", binQptConv, err)
	}
	slog.Debug("running qpt_conv", slog.String("qpt", qpt), slog.String("dir", filepath.Dir(qpt)))

	runErr := session.Run(runCtx, conn, QptConvScript(timeout))
	if runErr != nil {
		// Kill the stuck process before reaping it.
		cancel()
	}
	conn.Close()
	waitErr := wait()
	if runErr != nil {
		return fmt.Errorf("%s: %w", binQptConv, runErr)
	}
	if waitErr != nil {
		return fmt.Errorf("%s exited: %w", binQptConv, waitErr)
	}

	info, err := os.Stat(defaultOut)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("%s: %w: %s", binQptConv, ErrNoOutput, defaultOut)
	}
	if samePath(defaultOut, vmd) {
		return nil
	}
	if err := os.Rename(defaultOut, vmd); err != nil {
		return fmt.Errorf("moving %s to %s: %w", defaultOut, vmd, err)
	}
	return nil
}

func samePath(a, b string) bool {
	aa, errA := filepath.Abs(a)
	bb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}
