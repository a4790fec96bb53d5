package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Shuvo786/Nexway-API/internal/nexway"
)

// apiCall is a single API operation run with the resolved client and secret.
type apiCall func(ctx context.Context, c *nexway.Client, secret string) (json.RawMessage, error)

// run builds the client, performs fn and prints the response document.
func (a *app) run(cmd *cobra.Command, fn apiCall) error {
	c, err := a.nexwayClient(cmd)
	if err != nil {
		return err
	}
	doc, err := fn(cmd.Context(), c, a.secret())
	if err != nil {
		return err
	}
	return printDocument(cmd.OutOrStdout(), a.output(), doc)
}

func stockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stock <product-ref>...",
		Short: "Check stock for one or more product references",
		Example: `  nexway stock REF-100
  nexway stock REF-100 REF-200 --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *nexway.Client, secret string) (json.RawMessage, error) {
				return c.GetStockStatus(ctx, secret, args...)
			})
		},
	}
}

func crossUpSellCmd(a *app) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "crossupsell <product-ref>...",
		Short: "List cross-sell and up-sell suggestions",
		Example: `  nexway crossupsell REF-100 --language en`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *nexway.Client, secret string) (json.RawMessage, error) {
				return c.GetCrossUpSell(ctx, secret, language, args...)
			})
		},
	}

	cmd.Flags().StringVar(&language, "language", "en", "suggestion language")
	return cmd
}

func feedCmd(a *app) *cobra.Command {
	var (
		provider string
		config   string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Download the XML product catalog feed",
		Long: "Download the partner product catalog as XML. The feed is served from a\n" +
			"separate host and does not use a bearer token. Provider and config\n" +
			"default to the feed section of the config file.",
		Example: `  nexway feed --provider acme --feed-config default
  nexway feed --out catalog.xml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.nexwayClient(cmd)
			if err != nil {
				return err
			}
			if provider == "" {
				provider = a.cfg.Feed.Provider
			}
			if config == "" {
				config = a.cfg.Feed.Config
			}

			xml, err := c.GetProductFeed(cmd.Context(), a.secret(), provider, config)
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(xml)
				return err
			}
			if err := os.WriteFile(out, xml, 0o600); err != nil {
				return fmt.Errorf("writing feed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(xml), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "feed provider name")
	cmd.Flags().StringVar(&config, "feed-config", "", "feed configuration name")
	cmd.Flags().StringVar(&out, "out", "", "write the feed to this file instead of stdout")
	return cmd
}
