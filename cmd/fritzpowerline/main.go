// Fritzpowerline lists the powerline adapters registered at an AVM FRITZ!Box.
//
// It talks to the router's TR-064 interface (X_AVM-DE_Homeplug service),
// enumerates the powerline device table and can trigger firmware updates
// on individual adapters.
//
// Usage:
//
//	fritzpowerline [command] [flags]
//
// Running without arguments prints the router header and the device table.
// The router password is taken from --password, the FRITZ_PASSWORD
// environment variable or an interactive prompt (--ask-password).
// See 'fritzpowerline --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/muurk/fritzpowerline/internal/config"
	"github.com/muurk/fritzpowerline/internal/logging"
	"github.com/muurk/fritzpowerline/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	code := exitCode(err)
	logging.Sync()
	os.Exit(code)
}

// exitCode reports err on stderr and returns the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, config.ErrPasswordRequired):
		fmt.Println("Exit: password required.")
		return 1
	case errors.Is(err, errCancelled):
		return 1
	case errors.Is(err, ui.ErrInterrupted), errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Interrupted.")
		return 130
	default:
		logging.Error("Command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, renderError(err))
		return 1
	}
}
