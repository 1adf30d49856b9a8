package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediabox/internal/config"
	"mediabox/internal/history"
	"mediabox/internal/logging"
	"mediabox/internal/mediaio"
	"mediabox/internal/preflight"
	"mediabox/internal/session"
)

type transcodeOptions struct {
	encoder   string
	format    string
	copyOnly  bool
	noLock    bool
	noHistory bool
	workers   int
}

func newTranscodeCommand(ctx *commandContext) *cobra.Command {
	var opts transcodeOptions

	cmd := &cobra.Command{
		Use:   "transcode <input> <output>",
		Short: "Convert subtitle tracks into another codec and container",
		Long: "Convert reads <input>, converts every subtitle track to the configured\n" +
			"encoder and writes the result to <output>. The output container is taken\n" +
			"from --format, transcode.output_format, or the output file extension.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			reg, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}

			req := buildRequest(cfg, opts, args[0], args[1])
			if path, err := mediaio.LocalPath(req.Output); err == nil {
				if check := preflight.CheckOutputPath(path); !check.Passed {
					return fmt.Errorf("preflight: %s", check.Detail)
				}
			}

			workers := cfg.Transcode.Workers
			if opts.workers > 0 {
				workers = opts.workers
			}
			runner := session.NewRunner(reg, session.WithLogger(logger), session.WithWorkers(workers))
			summary, runErr := runner.Run(cmd.Context(), req)

			if cfg.History.Enabled && !opts.noHistory {
				recordHistory(cfg, logger, summary, runErr)
			}
			if runErr != nil {
				return runErr
			}
			printSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.encoder, "encoder", "e", "", "Subtitle encoder (defaults to transcode.subtitle_encoder)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output container (defaults to transcode.output_format or the extension)")
	cmd.Flags().BoolVar(&opts.copyOnly, "copy", false, "Copy every track without converting")
	cmd.Flags().BoolVar(&opts.noLock, "no-lock", false, "Do not take the advisory output lock")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this session in the history database")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent codec workers (defaults to transcode.workers)")
	return cmd
}

func buildRequest(cfg *config.Config, opts transcodeOptions, input, output string) session.Request {
	req := session.Request{
		Input:   input,
		Output:  output,
		Encoder: cfg.Transcode.SubtitleEncoder,
		Muxer:   cfg.Transcode.OutputFormat,
		Lock:    cfg.Transcode.LockOutputs && !opts.noLock,
	}
	if enc := strings.ToLower(strings.TrimSpace(opts.encoder)); enc != "" {
		req.Encoder = enc
	}
	if opts.copyOnly {
		req.Encoder = ""
	}
	if format := strings.ToLower(strings.TrimSpace(opts.format)); format != "" {
		req.Muxer = format
	}
	return req
}

// recordHistory stores the outcome without failing the command; the
// conversion already happened.
func recordHistory(cfg *config.Config, logger *slog.Logger, summary session.Summary, runErr error) {
	logger = logging.NewComponentLogger(logger, "history")
	store, err := history.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "history database unavailable", "history_open_failed",
			logging.Error(err),
			logging.String("path", cfg.Paths.HistoryDB),
			logging.String(logging.FieldErrorHint, "delete the history database or set history.enabled = false"),
			logging.String(logging.FieldImpact, "session not recorded"),
		)
		return
	}
	defer store.Close()

	entry := history.EntryFromSummary(summary, runErr)
	if err := store.Record(context.Background(), entry); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_record_failed",
			logging.Error(err),
			logging.Session(summary.ID),
			logging.String(logging.FieldImpact, "session not recorded"),
		)
		return
	}
	logger.Debug("session recorded", logging.Session(summary.ID))
}

func printSummary(cmd *cobra.Command, summary session.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s (%s, %d packets in %s)\n",
		summary.Output, summary.Muxer, summary.Packets, formatDuration(summary.Duration()))
	rows := make([][]string, 0, len(summary.Tracks))
	for _, t := range summary.Tracks {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(t.ID), 10),
			t.Kind.String(),
			t.From,
			t.To,
			languageLabel(t.Language),
			strconv.Itoa(t.Packets),
			yesNo(t.Failed),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Track", "Kind", "From", "To", "Language", "Packets", "Failed"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	if failed := countFailed(summary); failed > 0 {
		fmt.Fprintf(out, "%d track(s) fell back to copying after a conversion error; see the log for details.\n", failed)
	}
}

func countFailed(summary session.Summary) int {
	n := 0
	for _, t := range summary.Tracks {
		if t.Failed {
			n++
		}
	}
	return n
}
