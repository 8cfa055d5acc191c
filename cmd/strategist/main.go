package main

import (
	"fmt"
	"os"

	"github.com/MikeSquared-Agency/Strategist/internal/session"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Evaluation completed
	ExitInputError = 1 // The entered strategies, weights or scores were rejected
	ExitError      = 2 // Configuration or runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case session.IsInputError(err):
		return ExitInputError
	default:
		return ExitError
	}
}
