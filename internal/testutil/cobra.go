package testutil

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// CaptureStdout runs fn with os.Stdout redirected to a pipe and returns what
// it printed, trimmed. os.Stdout is restored even if fn panics.
func CaptureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	captured := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		r.Close()
		captured <- buf.String()
	}()

	stdout := os.Stdout
	os.Stdout = w
	func() {
		defer func() {
			os.Stdout = stdout
			w.Close()
		}()
		err = fn()
	}()

	return strings.TrimSpace(<-captured), err
}

// Execute runs c with args. The returned output holds both the command's
// printed results and the JSON log lines, since the logger writes to stdout.
func Execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	return CaptureStdout(t, func() error {
		c.SetArgs(args)
		return c.Execute()
	})
}
