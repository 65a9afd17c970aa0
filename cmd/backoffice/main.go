package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// exitInterrupted matches the shell's status for a SIGINT-terminated command.
const exitInterrupted = 130

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(exitInterrupted)
		}
		fmt.Fprintf(os.Stderr, "backoffice: %v\n", err)
		os.Exit(1)
	}
}
