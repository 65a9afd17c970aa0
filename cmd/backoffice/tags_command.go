package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"backoffice/internal/api"
	"backoffice/internal/config"
	"backoffice/internal/store"
)

func newTagsCommand(ctx *commandContext) *cobra.Command {
	var popular, asJSON bool
	var limit int

	cmd := &cobra.Command{
		Use:   "tags TAXONOMYTYPE",
		Short: "List the tags of a taxonomy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				if popular {
					counts, err := st.PopularTags(cmd.Context(), args[0], limit)
					if err != nil {
						return err
					}
					tags := api.FromTagCounts(counts)
					if asJSON {
						return writeJSON(cmd, tags)
					}
					rows := make([][]string, 0, len(tags))
					for _, tag := range tags {
						rows = append(rows, []string{tag.Slug, strconv.Itoa(tag.Count)})
					}
					fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Tag", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
					return nil
				}

				slugs, err := st.Tags(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				tags := api.FromTags(slugs)
				if asJSON {
					return writeJSON(cmd, tags)
				}
				rows := make([][]string, 0, len(tags))
				for _, tag := range tags {
					rows = append(rows, []string{tag.Slug})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Tag"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&popular, "popular", false, "Show the most used tags with counts")
	cmd.Flags().IntVar(&limit, "limit", store.DefaultPopularTagsLimit, "Number of popular tags")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
