package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON logger on stdout as the process default. main
// replaces it with a fan-out once the database log handler is up.
func Setup() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}
