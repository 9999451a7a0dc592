package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyfold/keyfold/client"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <remote-path> [remote-path...]",
	Short: "Delete files or empty folders from the server",
	Long: `Delete one or more paths from the server.

Folder paths end with a slash and only remove the folder entry itself,
never the files underneath it. Deleting a path that does not exist
succeeds quietly.

Examples:
  keyfold-cli delete docs/file.txt
  keyfold-cli delete old/a.txt old/b.txt old/c.txt
  keyfold-cli delete scratch/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(_ *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	opts := client.DeleteOptions{
		Paths: args,
	}

	results, err := c.Delete(context.Background(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	formatter := getFormatter()
	if err := formatter.FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	// Return error if any deletes failed
	if client.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
