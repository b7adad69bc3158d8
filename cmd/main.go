package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/muzik/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	app := newApp(runner)
	if err := app.Run(context.Background(), os.Args); err != nil {
		runner.Close()
		if errors.Is(err, errForceExit) {
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
