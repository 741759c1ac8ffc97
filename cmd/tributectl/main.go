// Command tributectl attests consumption units and offers tributes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/outbe/tribute-attest/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	code := cli.GetExitCode(err)
	// Command errors are already reported by the output formatter. Anything
	// else is a usage error from cobra.
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		code = cli.ExitCommandError
	}
	os.Exit(code)
}
