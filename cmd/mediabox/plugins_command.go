package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type pluginRow struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	Extensions []string `json:"extensions,omitempty"`
}

func newPluginsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "plugins",
		Short:       "List registered demuxers, muxers, decoders and encoders",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}

			var rows []pluginRow
			for _, d := range reg.Demuxers() {
				rows = append(rows, pluginRow{Kind: "demuxer", Name: d.Name})
			}
			for _, m := range reg.Muxers() {
				rows = append(rows, pluginRow{Kind: "muxer", Name: m.Name, Extensions: m.Extensions})
			}
			for _, d := range reg.Decoders() {
				rows = append(rows, pluginRow{Kind: "decoder", Name: d.Name})
			}
			for _, e := range reg.Encoders() {
				rows = append(rows, pluginRow{Kind: "encoder", Name: e.Name})
			}

			if asJSON {
				return writeJSON(cmd, rows)
			}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, []string{r.Kind, r.Name, strings.Join(r.Extensions, " ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Kind", "Name", "Extensions"}, table, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
