package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Shuvo786/Nexway-API/internal/nexway"
)

type subscriptionOp func(*nexway.Client, context.Context, nexway.SubscriptionRequest) (json.RawMessage, error)

func subscriptionsCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "Query, cancel and renew subscriptions",
	}

	root.AddCommand(
		subscriptionCmd(a, "status", "Show subscription status", (*nexway.Client).GetSubscriptionStatus),
		subscriptionCmd(a, "cancel", "Cancel a subscription", (*nexway.Client).CancelSubscription),
		subscriptionCmd(a, "renew", "Renew a subscription", (*nexway.Client).RenewSubscription),
	)

	return root
}

func subscriptionCmd(a *app, use, short string, op subscriptionOp) *cobra.Command {
	return &cobra.Command{
		Use:     use + " <partner-order-number> <subscription-id>",
		Short:   short,
		Example: "  nexway subscriptions " + use + " ORD-42 SUB-7",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *nexway.Client, secret string) (json.RawMessage, error) {
				return op(c, ctx, nexway.SubscriptionRequest{
					Secret:             secret,
					PartnerOrderNumber: args[0],
					SubscriptionID:     args[1],
				})
			})
		},
	}
}
