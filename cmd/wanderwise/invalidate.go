package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebitech02/WanderWise/internal/mqtt"
)

func newInvalidateCmd() *cobra.Command {
	var msg mqtt.Invalidation

	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Publish a climate cache invalidation to the MQTT broker",
		Example: `  wanderwise invalidate --country France
  wanderwise invalidate --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := msg.Validate(); err != nil {
				return err
			}
			cfg, err := setup()
			if err != nil {
				return err
			}
			if cfg.MQTTBroker == "" {
				return errors.New("MQTT_BROKER is not set")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			pub := mqtt.NewPublisher(cfg, slog.Default())
			if err := pub.Connect(ctx); err != nil {
				return err
			}
			defer pub.Disconnect()
			return pub.Publish(ctx, msg)
		},
	}
	cmd.Flags().StringVar(&msg.Country, "country", "", "country whose cached climate is dropped")
	cmd.Flags().BoolVar(&msg.All, "all", false, "drop every cached climate")
	return cmd
}
