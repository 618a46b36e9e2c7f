package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/karigar/config"
	"github.com/shashiranjanraj/karigar/pkg/identity"
)

// tokenCmd mints a development token signed with the local identity secret.
// Production tokens come from the identity provider; this exists so local
// requests can be made without standing one up.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if email == "" {
			return fmt.Errorf("--email is required")
		}

		if err := config.Load(); err != nil {
			return err
		}

		v := identity.NewJWTVerifier(config.IdentitySecret())
		token, err := v.Mint(identity.Identity{Email: email, Name: name}, ttl)
		if err != nil {
			return err
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("email", "", "email claim")
	tokenCmd.Flags().String("name", "", "display name claim")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
}
