package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dfryer1193/tusitala/blog/domain"
	"github.com/spf13/cobra"
)

func newTaxonomyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "List categories and tags on the WordPress site",
	}

	list := func(use, short string, fetch func(*commandContext, context.Context) ([]domain.Term, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				terms, err := fetch(ctx, cmd.Context())
				if err != nil {
					return err
				}
				if len(terms) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No %s found\n", use)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTerms(terms))
				return nil
			},
		}
	}

	cmd.AddCommand(list("categories", "List categories", func(c *commandContext, reqCtx context.Context) ([]domain.Term, error) {
		wp, err := c.wordpressClient()
		if err != nil {
			return nil, err
		}
		return wp.GetCategories(reqCtx)
	}))
	cmd.AddCommand(list("tags", "List tags", func(c *commandContext, reqCtx context.Context) ([]domain.Term, error) {
		wp, err := c.wordpressClient()
		if err != nil {
			return nil, err
		}
		return wp.GetTags(reqCtx)
	}))

	return cmd
}

func renderTerms(terms []domain.Term) string {
	rows := make([][]string, 0, len(terms))
	for _, t := range terms {
		rows = append(rows, []string{strconv.Itoa(t.ID), t.Name, t.Slug, strconv.Itoa(t.Count)})
	}
	return renderTable(
		[]string{"ID", "Name", "Slug", "Posts"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	)
}
