package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/central-university-dev/go-remu/internal/bot/dialog"
	"github.com/central-university-dev/go-remu/internal/clock"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/central-university-dev/go-remu/internal/parser"
)

type ParseResult struct {
	Kind            string `json:"kind"`
	Time            string `json:"time"`
	Local           string `json:"local"`
	IntervalSeconds int64  `json:"interval_seconds,omitempty"`
	Text            string `json:"text"`
	Confirmation    string `json:"confirmation"`
}

func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	var now string

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Parse reminder text the way the bot does",
		Long: `Parse reminder text and print the resulting command.

Accepted forms are durations ("1h30m text"), moments ("24-10 at 18.30 text")
and repeating events ("rep 23-12 11.30 7d text").`,
		Example: `  remuctl parse "2h30m stretch"
  remuctl parse --now 2025-03-01T09:00:00Z "at 18 call mom"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseNow(now)
			if err != nil {
				return err
			}

			return runParse(cmd, rootOpts, args[0], at)
		},
	}

	cmd.Flags().StringVar(&now, "now", "", "current time in RFC 3339 (defaults to the wall clock)")

	return cmd
}

func parseNow(value string) (time.Time, error) {
	if value == "" {
		return clock.NewReal().Now(), nil
	}

	at, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now value %q: %w", value, err)
	}

	return at.UTC(), nil
}

func runParse(cmd *cobra.Command, opts *RootOptions, text string, now time.Time) error {
	command, err := parser.Parse(text, now, opts.UTCOffset)
	if err != nil {
		return err
	}

	result := ParseResult{
		Kind:         command.Kind.String(),
		Time:         command.Time.UTC().Format(time.RFC3339),
		Local:        dialog.LocalTime(command.Time, opts.UTCOffset).Format("2006-01-02 15:04:05"),
		Text:         command.Text,
		Confirmation: dialog.ConfirmationHeader(command.Time, now, opts.UTCOffset),
	}

	if command.Kind == models.Repeating {
		result.IntervalSeconds = int64(command.Interval / time.Second)
	}

	out := cmd.OutOrStdout()

	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	}

	fmt.Fprintf(out, "kind:  %s\n", result.Kind)
	fmt.Fprintf(out, "time:  %s\n", result.Time)
	fmt.Fprintf(out, "local: %s\n", result.Local)

	if command.Kind == models.Repeating {
		fmt.Fprintf(out, "every: %s\n", command.Interval)
	}

	fmt.Fprintf(out, "text:  %q\n", result.Text)
	fmt.Fprintf(out, "reply: %s\n", result.Confirmation)

	return nil
}
