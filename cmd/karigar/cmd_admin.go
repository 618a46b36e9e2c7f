package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/karigar/app/repositories"
	"github.com/shashiranjanraj/karigar/config"
	"github.com/shashiranjanraj/karigar/pkg/database"
)

// adminGrantCmd bootstraps the first admin. make-admin over HTTP requires an
// existing admin, so the very first promotion has to happen out of band.
var adminGrantCmd = &cobra.Command{
	Use:   "admin:grant",
	Short: "Grant the admin role to a user by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := cmd.Flags().GetString("email")
		if err != nil || email == "" {
			return fmt.Errorf("--email is required")
		}

		if err := config.Load(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		client, err := database.Connect(ctx, config.MongoURI())
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background()) //nolint:errcheck

		users := repositories.NewUserRepository(
			client.Database(config.MongoDatabase()).Collection(repositories.ColUsers))

		user, err := users.Promote(ctx, email)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("no user with email %q, they must sign in once first", email)
			}
			return err
		}

		fmt.Printf("%s is now %s\n", user.Email, user.Role)
		return nil
	},
}

func init() {
	adminGrantCmd.Flags().String("email", "", "email of the user to promote")
}
