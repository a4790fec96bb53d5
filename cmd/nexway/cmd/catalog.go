package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Shuvo786/Nexway-API/internal/nexway"
)

func catalogCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "catalog",
		Short: "Query catalog reference data",
	}

	root.AddCommand(
		&cobra.Command{
			Use:     "categories <language>",
			Short:   "List product categories in a language",
			Example: `  nexway catalog categories en`,
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, func(ctx context.Context, c *nexway.Client, secret string) (json.RawMessage, error) {
					return c.GetCategories(ctx, secret, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "oslist",
			Short: "List supported operating systems",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.run(cmd, func(ctx context.Context, c *nexway.Client, secret string) (json.RawMessage, error) {
					return c.GetOperatingSystems(ctx, secret)
				})
			},
		},
	)

	return root
}
