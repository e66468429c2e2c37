package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var levelVar = new(slog.LevelVar)

// output lets the destination change after L has been handed out.
type output struct {
	mu sync.Mutex
	w  io.Writer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

func (o *output) set(w io.Writer) {
	o.mu.Lock()
	o.w = w
	o.mu.Unlock()
}

var out = &output{w: os.Stdout}

var L = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: levelVar}))

// SetLevel configures the global log level (debug, info, warn, error).
func SetLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn", "warning":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}
}

// Level reports the level currently in effect.
func Level() slog.Level {
	return levelVar.Level()
}

// SetOutput redirects log output to w. It is safe to call while other
// goroutines are logging.
func SetOutput(w io.Writer) {
	out.set(w)
}

// UseStderr redirects log output to stderr. Commands that own stdout
// (the MCP stdio transport, the terminal chat) call this before logging.
func UseStderr() {
	SetOutput(os.Stderr)
}
