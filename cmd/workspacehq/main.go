package main

import (
	"os"

	"github.com/workspacehq/assistant/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.L.Error("command failed", "error", err)
		os.Exit(1)
	}
}
