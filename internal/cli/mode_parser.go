package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	ModeUser   = "user-client"
	ModeWorker = "worker-client"
	ModeToken  = "token"
)

// isKnownMode checks if the provided mode name is known.
func isKnownMode(s string) (string, bool) {
	switch s {
	case ModeUser, "user", "u":
		return ModeUser, true
	case ModeWorker, "worker", "w":
		return ModeWorker, true
	case ModeToken:
		return ModeToken, true
	default:
		return "", false
	}
}

// ParseMode supports:
//
//	--mode=<value>
//	<value> (subcommand shorthand), e.g., `worker-client --worker-id=W1`
func ParseMode(args []string) (string, []string, error) {
	var mode string
	var out []string

	for i := range args {
		arg := args[i]
		if after, ok := strings.CutPrefix(arg, "--mode="); ok {
			mode = after
			continue
		}

		if mode == "" {
			if m, ok := isKnownMode(arg); ok {
				mode = m
				continue
			}
		}
		out = append(out, arg)
	}

	if mode == "" {
		return "", out, errors.New("no mode specified: use --mode=<client>")
	}

	normalized, ok := isKnownMode(mode)
	if !ok {
		return "", out, fmt.Errorf("unknown mode %q", mode)
	}
	return normalized, out, nil
}

// PrintUsage prints the usage information with examples.
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage:
  ./gharsewa --mode=<client> [flags]

Clients (modes):
  user-client      Live booking tracking for a customer
  worker-client    Booking request listening and location streaming
  token            Mint a short-lived dev token for the clients above

Examples:
  ./gharsewa --mode=user-client --booking-id=665f1c2e9a
  ./gharsewa --mode=worker-client --simulate --auto-accept
  ./gharsewa --mode=token --secret=dev-secret --user-id=w1 --role=worker`)
}

// AttachUsage wires a concise per-mode usage to a FlagSet.
func AttachUsage(fs *flag.FlagSet, mode string) {
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ./gharsewa --mode=%s [flags]\n", mode)
		fs.PrintDefaults()
	}
}
