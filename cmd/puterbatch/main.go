// Package main implements puterbatch, which sends every question of a JSONL
// file to the Puter completion API and stores one JSON artifact per
// question. Re-running it over the same result directory resumes the batch.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
