package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/crimson-sun/tiermap/internal/model"
)

// Exit codes.
const (
	exitOK        = 0
	exitFailure   = 1
	exitConfig    = 2
	exitEmbedding = 3
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nreceived %v, shutting down...\n", sig)
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tiermap: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, model.ErrConfiguration):
		return exitConfig
	case errors.Is(err, model.ErrEmbeddingUnavailable):
		return exitEmbedding
	default:
		return exitFailure
	}
}
