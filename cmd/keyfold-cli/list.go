package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List a folder on the server",
	Long: `List the files and folders directly inside a folder.

The path is a folder path; omit it (or pass "/") for the root.
Listing does not recurse, folders show up as single entries.

Examples:
  keyfold-cli list
  keyfold-cli list docs/
  keyfold-cli list docs/reports`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(_ *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	c, err := getClient()
	if err != nil {
		return err
	}

	result, err := c.List(context.Background(), path)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	formatter := getFormatter()
	return formatter.FormatList(os.Stdout, result)
}
