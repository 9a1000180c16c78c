package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"budgetit/internal/amqp"
	applog "budgetit/internal/log"
)

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect ledger change events",
	}
	cmd.AddCommand(watchEventsCmd())
	return cmd
}

func watchEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print ledger events from the broker until interrupted",
		Long: `Print ledger events as they arrive on the configured AMQP queue. The
watcher acknowledges what it prints, so do not run it next to
budgetit-worker on the same queue.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			broker := app.Backend.Broker
			if broker == nil {
				return errors.New("no AMQP broker configured or reachable, set BUDGETIT_AMQP_URL")
			}

			applog.FromContext(cmd.Context()).Info("Watching ledger events", "queue", app.Config.AMQPQueue)
			fmt.Println(mutedStyle.Render("Waiting for events, press Ctrl+C to stop."))
			err := broker.ConsumeLedgerEvents(cmd.Context(), func(_ context.Context, msg *amqp.LedgerEventMessage) error {
				fmt.Printf("%s  %s  #%d  %s\n",
					mutedStyle.Render(msg.OccurredAt.Local().Format("2006-01-02 15:04:05")),
					headerStyle.Render(msg.Type),
					msg.EntityID,
					formatAttributes(msg.Attributes))
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func formatAttributes(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + attrs[k]
	}
	return strings.Join(parts, " ")
}
