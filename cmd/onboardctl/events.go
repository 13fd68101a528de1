package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/onboarding/internal/adapter/driven/events"
)

var eventsCmd = &cobra.Command{
	Use:     "events",
	Short:   "Stream onboarding events from NATS",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if natsURL == "" {
			return errors.New("no NATS URL: pass --nats-url or set ONBOARDCTL_NATS_URL")
		}
		topic, _ := cmd.Flags().GetString("topic")

		sub, err := events.NewNATSSubscriber(natsURL)
		if err != nil {
			return err
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return err
		}
		defer cancel()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-ch:
				if !ok {
					return nil
				}
				fmt.Fprintf(out, "%s %s\n", msg.Topic, msg.Data)
			}
		}
	},
}

func init() {
	eventsCmd.Flags().String("topic", events.TopicAll, "NATS subject to subscribe to")
}
