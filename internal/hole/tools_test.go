// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hole

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/holeviz/internal/session"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // full path -> whether LookPath succeeds
	runFunc       func(name string, args []string) (string, error)
	startFunc     func(name, dir string) (io.ReadWriteCloser, func() error, error)

	mu    sync.Mutex
	calls []string
}

func (m *mockExecutor) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(_ context.Context, name string, args []string) (string, error) {
	m.record(name + " " + strings.Join(args, " "))
	if m.runFunc != nil {
		return m.runFunc(name, args)
	}
	return "", nil
}

func (m *mockExecutor) Start(_ context.Context, name, dir string) (io.ReadWriteCloser, func() error, error) {
	m.record("start " + name + " in " + dir)
	if m.startFunc != nil {
		return m.startFunc(name, dir)
	}
	return nil, nil, errors.New("start not configured")
}

type pipeConn struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (p *pipeConn) Close() error {
	for _, c := range p.closers {
		c.Close()
	}
	return nil
}

// fakeQptConv plays qpt_conv's dialogue. When the overwrite prompt is
// requested it asks to overwrite before the line width question. On success
// it writes content to output.
func fakeQptConv(output, content string, askOverwrite bool) func(string, string) (io.ReadWriteCloser, func() error, error) {
	return func(_, _ string) (io.ReadWriteCloser, func() error, error) {
		outR, outW := io.Pipe()
		inR, inW := io.Pipe()
		done := make(chan error, 1)

		go func() {
			br := bufio.NewReader(inR)
			prompts := []string{
				" Enter conversion option character: ",
				" Please enter input binary hydra/quanta plot <x.qpt>: ",
				" Please enter output vmd format file <x.vmd_plot>: ",
			}
			if askOverwrite {
				prompts = append(prompts, " File exists. Enter option: ")
			}
			prompts = append(prompts, " What width do you want lines to appear <1>: ")
			for _, p := range prompts {
				if _, err := io.WriteString(outW, p); err != nil {
					done <- err
					return
				}
				if _, err := br.ReadString('\n'); err != nil {
					done <- err
					return
				}
			}
			err := os.WriteFile(output, []byte(content), 0o644)
			outW.Close()
			done <- err
		}()

		conn := &pipeConn{Reader: outR, Writer: inW, closers: []io.Closer{outR, inW, inR, outW}}
		wait := func() error { return <-done }
		return conn, wait, nil
	}
}

func newTestTools(m *mockExecutor) *Tools {
	return &Tools{Dir: "/opt/hole/exe", exec: m}
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name    string
		bins    map[string]bool
		wantErr string
	}{
		{
			name: "both present",
			bins: map[string]bool{"/opt/hole/exe/sph_process": true, "/opt/hole/exe/qpt_conv": true},
		},
		{
			name:    "qpt_conv missing",
			bins:    map[string]bool{"/opt/hole/exe/sph_process": true},
			wantErr: "/opt/hole/exe/qpt_conv",
		},
		{
			name:    "none present",
			bins:    map[string]bool{},
			wantErr: "sph_process",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestTools(&mockExecutor{availableBins: tt.bins}).Available()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSphProcess(t *testing.T) {
	dir := t.TempDir()
	sph := filepath.Join(dir, "pore.sph")
	qpt := filepath.Join(dir, "pore_surface.qpt")

	t.Run("runs with default density", func(t *testing.T) {
		m := &mockExecutor{runFunc: func(_ string, args []string) (string, error) {
			return "", os.WriteFile(args[len(args)-1], []byte("binary"), 0o644)
		}}
		require.NoError(t, newTestTools(m).SphProcess(context.Background(), sph, qpt, 0))
		require.Len(t, m.calls, 1)
		assert.Equal(t, "/opt/hole/exe/sph_process -dotden 15 -color "+sph+" "+qpt, m.calls[0])
	})

	t.Run("density out of range", func(t *testing.T) {
		m := &mockExecutor{}
		for _, d := range []int{4, 31, -1} {
			err := newTestTools(m).SphProcess(context.Background(), sph, qpt, d)
			assert.Error(t, err, "dotden %d", d)
		}
		assert.Empty(t, m.calls)
	})

	t.Run("failure carries stderr", func(t *testing.T) {
		m := &mockExecutor{runFunc: func(string, []string) (string, error) {
			return "cannot open sph file\n", errors.New("exit status 1")
		}}
		err := newTestTools(m).SphProcess(context.Background(), sph, qpt, 20)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot open sph file")
	})

	t.Run("no output", func(t *testing.T) {
		missing := filepath.Join(dir, "never.qpt")
		err := newTestTools(&mockExecutor{}).SphProcess(context.Background(), sph, missing, 10)
		assert.ErrorIs(t, err, ErrNoOutput)
	})
}

func TestQptConvScript(t *testing.T) {
	s := QptConvScript(0)
	assert.Equal(t, DefaultTimeout, s.Timeout)
	require.Len(t, s.Steps, 4)
	assert.Equal(t, session.Step{Expect: PromptOption, Reply: "D"}, s.Steps[0])
	for _, st := range s.Steps[1:] {
		assert.Empty(t, st.Reply)
	}
	assert.Equal(t, []string{PromptOverwrite}, s.Unexpected)
	assert.Equal(t, 5*time.Second, QptConvScript(5*time.Second).Timeout)
}

func TestDefaultVMDPath(t *testing.T) {
	assert.Equal(t, filepath.Join("work", "pore_surface.vmd_plot"), DefaultVMDPath(filepath.Join("work", "pore_surface.qpt")))
}

func TestQptToVMD(t *testing.T) {
	t.Run("converts and renames", func(t *testing.T) {
		dir := t.TempDir()
		qpt := filepath.Join(dir, "pore_surface.qpt")
		stale := DefaultVMDPath(qpt)
		require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
		target := filepath.Join(dir, "renamed.vmd_plot")

		m := &mockExecutor{startFunc: fakeQptConv(stale, "draw color red\n", false)}
		require.NoError(t, newTestTools(m).QptToVMD(context.Background(), qpt, target, 5*time.Second))

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "draw color red\n", string(data))
		assert.NoFileExists(t, stale)
		assert.Equal(t, []string{"start /opt/hole/exe/qpt_conv in " + dir}, m.calls)
	})

	t.Run("output already at default path", func(t *testing.T) {
		dir := t.TempDir()
		qpt := filepath.Join(dir, "a.qpt")
		out := DefaultVMDPath(qpt)
		m := &mockExecutor{startFunc: fakeQptConv(out, "x", false)}
		require.NoError(t, newTestTools(m).QptToVMD(context.Background(), qpt, out, 5*time.Second))
		assert.FileExists(t, out)
	})

	t.Run("overwrite prompt fails the script", func(t *testing.T) {
		dir := t.TempDir()
		qpt := filepath.Join(dir, "a.qpt")
		m := &mockExecutor{startFunc: fakeQptConv(DefaultVMDPath(qpt), "x", true)}
		err := newTestTools(m).QptToVMD(context.Background(), qpt, filepath.Join(dir, "b.vmd_plot"), 5*time.Second)
		require.Error(t, err)
		assert.ErrorIs(t, err, session.ErrUnexpectedPrompt)

		var se *session.Error
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 3, se.Step)
	})

	t.Run("empty output", func(t *testing.T) {
		dir := t.TempDir()
		qpt := filepath.Join(dir, "a.qpt")
		m := &mockExecutor{startFunc: fakeQptConv(DefaultVMDPath(qpt), "", false)}
		err := newTestTools(m).QptToVMD(context.Background(), qpt, filepath.Join(dir, "b.vmd_plot"), 5*time.Second)
		assert.ErrorIs(t, err, ErrNoOutput)
	})

	t.Run("start failure", func(t *testing.T) {
		dir := t.TempDir()
		err := newTestTools(&mockExecutor{}).QptToVMD(context.Background(), filepath.Join(dir, "a.qpt"), filepath.Join(dir, "b"), time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "starting qpt_conv")
	})
}
