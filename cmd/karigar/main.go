package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "karigar",
	Short: "Karigar services marketplace backend",
	Long:  "REST backend for the Karigar services marketplace: services, reviews, orders, and user-role management.",
}

func main() {
	rootCmd.AddCommand(serveCmd, adminGrantCmd, dbPingCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
