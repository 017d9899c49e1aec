package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/promptkeepapp/promptkeep-server/internal/watcher"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: watch-test <prompts-dir>")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	w, err := watcher.New(logger, watcher.Options{})
	if err != nil {
		logger.Error("create watcher failed", "error", err)
		os.Exit(1)
	}

	if err := w.Watch(os.Args[1]); err != nil {
		logger.Error("watch failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	go func() {
		if err := w.Start(ctx); err != nil {
			logger.Error("watcher stopped", "error", err)
		}
	}()

	fmt.Printf("Watching %s for markdown changes (Ctrl-C to stop)\n\n", os.Args[1])

	events := 0
	for {
		select {
		case event := <-w.Events():
			events++
			fmt.Printf("[%s] %s (%d bytes)\n", event.Type, event.Path, event.Size)
		case err := <-w.Errors():
			fmt.Printf("[error] %v\n", err)
		case <-ctx.Done():
			w.Stop()
			fmt.Printf("\n=== Watch Complete ===\n")
			fmt.Printf("Events: %d\n", events)
			return
		}
	}
}
