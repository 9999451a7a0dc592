package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <remote-path>",
	Short: "Create an empty folder on the server",
	Long: `Create an empty folder.

Parent folders appear implicitly, there is no need to create them
first. Creating a folder that already exists is not an error.

Examples:
  keyfold-cli mkdir reports/2025
  keyfold-cli mkdir scratch/`,
	Args: cobra.ExactArgs(1),
	RunE: runMkdir,
}

func runMkdir(_ *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	if err := c.Mkdir(context.Background(), args[0]); err != nil {
		return handleError(os.Stderr, err)
	}

	if !quiet {
		fmt.Printf("Created: %s\n", args[0])
	}
	return nil
}
