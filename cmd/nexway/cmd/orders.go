package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Shuvo786/Nexway-API/internal/nexway"
)

func ordersCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "orders",
		Short: "Create, inspect and cancel orders",
	}

	root.AddCommand(
		orderCreateCmd(a),
		orderGetCmd(a),
		orderDownloadCmd(a),
		orderCancelCmd(a),
		orderDownloadTimeCmd(a),
	)

	return root
}

func orderCreateCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit an order document",
		Long: "Submit an order document as JSON. The document is read from --file,\n" +
			"or from stdin when --file is '-' or omitted, and sent unmodified.",
		Example: `  nexway orders create --file order.json
  cat order.json | nexway orders create`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := readDocument(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, c *nexway.Client, secret string) (json.RawMessage, error) {
				return c.CreateOrder(ctx, secret, order)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "order JSON file ('-' for stdin)")
	return cmd
}

func orderGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "get <order-id>",
		Short:   "Show an order",
		Example: `  nexway orders get PO-1234`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *nexway.Client, secret string) (json.RawMessage, error) {
				return c.GetOrder(ctx, secret, args[0])
			})
		},
	}
}

func orderDownloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "download <order-id>",
		Short:   "Show download links for an order",
		Example: `  nexway orders download PO-1234`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *nexway.Client, secret string) (json.RawMessage, error) {
				return c.GetOrderDownloadInfo(ctx, secret, args[0])
			})
		},
	}
}

func orderCancelCmd(a *app) *cobra.Command {
	var (
		reason  string
		comment string
	)

	cmd := &cobra.Command{
		Use:   "cancel <partner-order-number>",
		Short: "Cancel an order",
		Example: `  nexway orders cancel ORD-42
  nexway orders cancel ORD-42 --reason 3 --comment "customer request"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *nexway.Client, secret string) (json.RawMessage, error) {
				return c.CancelOrder(ctx, nexway.CancelOrderRequest{
					Secret:             secret,
					PartnerOrderNumber: args[0],
					ReasonCode:         reason,
					Comment:            comment,
				})
			})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", nexway.DefaultCancelReasonCode, "numeric cancellation reason code")
	cmd.Flags().StringVar(&comment, "comment", "", "cancellation comment")
	return cmd
}

func orderDownloadTimeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "update-download-time <partner-order-number> <value>",
		Short:   "Change the download expiry of an order",
		Example: `  nexway orders update-download-time ORD-42 2026-12-31`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *nexway.Client, secret string) (json.RawMessage, error) {
				return c.UpdateDownloadTime(ctx, secret, args[0], args[1])
			})
		},
	}
}

func readDocument(stdin io.Reader, path string) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading order document: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("order document is not valid JSON")
	}
	return data, nil
}
