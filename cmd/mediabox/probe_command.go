package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mediabox/internal/language"
	"mediabox/internal/session"
)

type probeTrack struct {
	ID       uint32 `json:"id"`
	Kind     string `json:"kind"`
	Codec    string `json:"codec"`
	Language string `json:"language"`
	Packets  int    `json:"packets"`
	FirstMS  int64  `json:"first_ms"`
	LastMS   int64  `json:"last_ms"`
}

type probeReport struct {
	URI     string       `json:"uri"`
	Demuxer string       `json:"demuxer"`
	Tracks  []probeTrack `json:"tracks"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe <input>",
		Short: "Detect an input's container and summarize its tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}
			inspection, err := session.Inspect(cmd.Context(), reg, args[0])
			if err != nil {
				return fmt.Errorf("probe %s: %w", args[0], err)
			}

			report := probeReport{URI: inspection.URI, Demuxer: inspection.Demuxer}
			for _, stats := range inspection.Tracks {
				report.Tracks = append(report.Tracks, probeTrack{
					ID:       stats.Track.ID,
					Kind:     stats.Track.Info.Kind().String(),
					Codec:    stats.Track.Info.Name,
					Language: stats.Track.Info.Language.String(),
					Packets:  stats.Packets,
					FirstMS:  stats.First.Milliseconds(),
					LastMS:   stats.Last.Milliseconds(),
				})
			}
			if asJSON {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Input:   %s\n", report.URI)
			fmt.Fprintf(out, "Demuxer: %s\n", report.Demuxer)
			rows := make([][]string, 0, len(report.Tracks))
			for _, t := range report.Tracks {
				rows = append(rows, []string{
					strconv.FormatUint(uint64(t.ID), 10),
					t.Kind,
					t.Codec,
					languageLabel(t.Language),
					strconv.Itoa(t.Packets),
					formatDuration(time.Duration(t.FirstMS) * time.Millisecond),
					formatDuration(time.Duration(t.LastMS) * time.Millisecond),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Track", "Kind", "Codec", "Language", "Packets", "First", "Last"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

// languageLabel renders a BCP 47 tag as an English name; und reads Unknown.
func languageLabel(tag string) string {
	if tag == "und" {
		tag = ""
	}
	return language.DisplayName(tag)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
