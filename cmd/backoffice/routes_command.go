package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"backoffice/internal/config"
	"backoffice/internal/daemonrun"
	"backoffice/internal/store"
)

func newRoutesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the async endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				rt, err := daemonrun.Build(cfg, st, nil)
				if err != nil {
					return err
				}
				routes := rt.Async.Routes()
				if asJSON {
					return writeJSON(cmd, routes)
				}
				rows := make([][]string, 0, len(routes))
				for _, r := range routes {
					rows = append(rows, []string{r.Method, r.Path, r.Description})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Method", "Path", "Description"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
