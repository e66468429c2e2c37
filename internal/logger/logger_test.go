package logger

import (
	"bytes"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		SetLevel(in)
		require.Equal(t, want, Level(), "level %q", in)
	}
}

func TestSetOutput(t *testing.T) {
	t.Cleanup(func() { SetOutput(os.Stdout) })

	var first, second bytes.Buffer
	SetOutput(&first)
	L.Info("first line", "n", 1)
	require.Contains(t, first.String(), `"msg":"first line"`)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			L.Info("concurrent")
		}()
	}
	SetOutput(&second)
	wg.Wait()

	L.Info("second line")
	require.Contains(t, second.String(), `"msg":"second line"`)
	require.NotContains(t, first.String(), "second line")
}
