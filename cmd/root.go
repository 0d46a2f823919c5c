package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "sjsage522/cruisewatch/pkg/errors"
)

var rootCmd = &cobra.Command{
	Use:           "cruisewatch",
	Short:         "cruisewatch tracks cruise sailing prices against a booked baseline.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the CLI and returns the process exit code: 0 on
// success, 2 for configuration errors, 1 otherwise
func ExecuteContext(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		if apperrors.Is(err, apperrors.ErrorTypeConfiguration) {
			return 2
		}
		return 1
	}
	return 0
}
