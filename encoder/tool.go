package encoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

const stderrTailSize = 4096

// ToolError is returned when an external encoder exits unsuccessfully
type ToolError struct {
	Tool     string
	ExitCode int // -1 when the process never ran
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed", filepath.Base(e.Tool))
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" with exit status %d", e.ExitCode)
	}
	if e.Err != nil && e.ExitCode < 0 {
		msg += ": " + e.Err.Error()
	}
	if tail := strings.TrimSpace(e.Stderr); tail != "" {
		msg += ": " + lastLine(tail)
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// tailBuffer keeps the last n bytes written to it
type tailBuffer struct {
	mu  sync.Mutex
	n   int
	buf []byte
}

func newTailBuffer(n int) *tailBuffer { return &tailBuffer{n: n} }

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.n; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

func toolError(tool string, err error, stderr *tailBuffer) error {
	te := &ToolError{Tool: tool, ExitCode: -1, Err: err, Stderr: stderr.String()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		te.ExitCode = exitErr.ExitCode()
	}
	return te
}

// runTool runs tool synchronously, returning stdout. A non-zero exit is a
// *ToolError carrying the tail of stderr.
func runTool(ctx context.Context, tool string, args []string, stdin io.Reader) ([]byte, error) {
	cmd := exec.CommandContext(ctx, tool, args...)
	stderr := newTailBuffer(stderrTailSize)
	cmd.Stderr = stderr
	cmd.Stdin = stdin
	out, err := cmd.Output()
	if err != nil {
		return out, toolError(tool, err, stderr)
	}
	return out, nil
}
