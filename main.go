package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gharsewa/internal/app/userapp"
	"gharsewa/internal/app/workerapp"
	"gharsewa/internal/cli"
)

func main() {
	// quick path for global help
	if len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		cli.PrintUsage(os.Stdout)
		os.Exit(0)
	}

	// parse mode and collect the remaining args for that mode
	mode, clientArgs, err := cli.ParseMode(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	// context cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch mode {

	case cli.ModeUser:
		fs := flag.NewFlagSet(cli.ModeUser, flag.ContinueOnError)
		bookingID := fs.String("booking-id", "", "Booking to open a live-tracking session for")
		cli.AttachUsage(fs, cli.ModeUser)

		if err := fs.Parse(clientArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}
		if *bookingID == "" {
			fmt.Fprintln(os.Stderr, "Error: --booking-id is required")
			fs.Usage()
			os.Exit(2)
		}
		if err := userapp.Run(ctx, *bookingID); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	case cli.ModeWorker:
		fs := flag.NewFlagSet(cli.ModeWorker, flag.ContinueOnError)
		simulate := fs.Bool("simulate", false, "Stream a simulated position walk instead of real GPS")
		autoAccept := fs.Bool("auto-accept", false, "Accept every surfaced booking request (dev only)")
		cli.AttachUsage(fs, cli.ModeWorker)

		if err := fs.Parse(clientArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}
		if err := workerapp.Run(ctx, *simulate, *autoAccept); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	case cli.ModeToken:
		fs := flag.NewFlagSet(cli.ModeToken, flag.ContinueOnError)
		secret := fs.String("secret", "", "HS256 signing secret of the dev backend")
		userID := fs.String("user-id", "", "Subject the token is minted for")
		role := fs.String("role", "user", "Role claim: user or worker")
		cli.AttachUsage(fs, cli.ModeToken)

		if err := fs.Parse(clientArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}
		if *secret == "" || *userID == "" {
			fmt.Fprintln(os.Stderr, "Error: --secret and --user-id are required")
			fs.Usage()
			os.Exit(2)
		}
		token, err := cli.GenerateDevToken(*secret, *userID, *role)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		fmt.Println(token)

	default:
		// should not happen because ParseMode validates known modes
		fmt.Fprintln(os.Stderr, "Error: unknown mode")
		os.Exit(2)
	}

	// tiny delay to let deferred logs flush on very fast exits
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Millisecond):
	}
}
