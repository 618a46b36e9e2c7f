package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/karigar/config"
	"github.com/shashiranjanraj/karigar/pkg/database"
)

var dbPingCmd = &cobra.Command{
	Use:   "db:ping",
	Short: "Verify the document store connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		start := time.Now()
		client, err := database.Connect(ctx, config.MongoURI())
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background()) //nolint:errcheck

		fmt.Printf("ok: %s (%s)\n", config.MongoURI(), time.Since(start).Round(time.Millisecond))
		return nil
	},
}
