package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func tokenCmd(a *app) *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Obtain an access token",
		Long: "Request an access token with the configured client credentials and\n" +
			"print it. Tokens are masked unless --show is given.",
		Example: `  nexway token
  nexway token --show --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.nexwayClient(cmd)
			if err != nil {
				return err
			}
			if _, err := c.Tokens().Acquire(cmd.Context(), false); err != nil {
				return err
			}
			tok, _ := c.Tokens().Token()
			return printToken(cmd.OutOrStdout(), a.output(), tok, show)
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "print tokens unmasked")
	cmd.AddCommand(tokenInvalidateCmd(a))
	return cmd
}

func tokenInvalidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate",
		Short: "Reset the partner's refresh tokens",
		Long: "Obtain a token and immediately ask the server to reset all refresh\n" +
			"tokens for the partner realm.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.nexwayClient(cmd)
			if err != nil {
				return err
			}
			if _, err := c.Tokens().Acquire(cmd.Context(), false); err != nil {
				return err
			}
			if err := c.Tokens().Invalidate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tokens reset.")
			return nil
		},
	}
}
