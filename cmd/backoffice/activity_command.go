package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"backoffice/internal/config"
	"backoffice/internal/store"
)

func newActivityCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var contextFilter, level string
	var changes bool

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent system activity or content changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()
				if changes {
					entries, err := st.ChangeActivity(cmd.Context(), limit)
					if err != nil {
						return err
					}
					rows := make([][]string, 0, len(entries))
					for _, e := range entries {
						rows = append(rows, []string{
							humanize.Time(e.Date), e.OwnerName, e.MutationType,
							e.ContentType + "/" + strconv.FormatInt(e.ContentID, 10), e.Title,
						})
					}
					fmt.Fprintln(out, renderTable([]string{"When", "User", "Change", "Record", "Title"}, rows, nil))
					return nil
				}

				entries, err := st.SystemActivity(cmd.Context(), store.SystemQuery{Limit: limit, Level: level, Context: contextFilter})
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{humanize.Time(e.Date), e.Level, e.Context, e.OwnerName, e.Message})
				}
				fmt.Fprintln(out, renderTable([]string{"When", "Level", "Context", "User", "Message"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries")
	cmd.Flags().StringVar(&contextFilter, "context", "", "Only entries logged under this context (e.g. authentication)")
	cmd.Flags().StringVar(&level, "level", "", "Only entries at this level")
	cmd.Flags().BoolVar(&changes, "changes", false, "Show the content changelog instead of system activity")
	return cmd
}
