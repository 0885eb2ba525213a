package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gharsewa/internal/app/userapp"
)

func main() {
	fs := flag.NewFlagSet("user-client", flag.ExitOnError)
	bookingID := fs.String("booking-id", "", "Booking to open a live-tracking session for")
	_ = fs.Parse(os.Args[1:])

	if *bookingID == "" {
		fmt.Fprintln(os.Stderr, "Error: --booking-id is required")
		fs.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := userapp.Run(ctx, *bookingID); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
