package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewRoot builds the imgcodec command tree: one subcommand per codec
// family, each with encode/decode children.
func NewRoot(ctx context.Context) *cobra.Command {
	root := &cobra.Command{
		Use:   "imgcodec",
		Short: "encode and decode J2K, CCITT, GIF and TGA images",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel, _ := cmd.Flags().GetString("log-level")
			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
				level = slog.LevelInfo
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			runID := uuid.New()
			slog.DebugContext(ctx, "imgcodec invoked", "run_id", runID.String(), "args", os.Args[1:])
		},
	}
	root.PersistentFlags().String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(
		newJ2KCmd(ctx),
		newCCITTCmd(ctx),
		newGIFCmd(ctx),
		newTGACmd(ctx),
	)
	return root
}

func fail(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
