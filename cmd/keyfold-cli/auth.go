package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Verify the configured secret against the server",
	Long: `Verify the configured secret against the server.

Exits 0 if the server accepts the secret (or runs without one),
non-zero otherwise.`,
	RunE: runAuth,
}

func runAuth(_ *cobra.Command, _ []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	if err := c.CheckAuth(context.Background()); err != nil {
		return handleError(os.Stderr, err)
	}

	if !quiet {
		fmt.Println("OK")
	}
	return nil
}
