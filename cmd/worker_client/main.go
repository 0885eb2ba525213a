package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gharsewa/internal/app/workerapp"
)

func main() {
	fs := flag.NewFlagSet("worker-client", flag.ExitOnError)
	simulate := fs.Bool("simulate", false, "Stream a simulated position walk instead of real GPS")
	autoAccept := fs.Bool("auto-accept", false, "Accept every surfaced booking request (dev only)")
	_ = fs.Parse(os.Args[1:])

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := workerapp.Run(ctx, *simulate, *autoAccept); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
