package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyfold/keyfold/client"
)

var (
	uploadRecursive   bool
	uploadContentType string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [remote-path]",
	Short: "Upload files to the server",
	Long: `Upload a file, or a directory tree with --recursive.

If no remote path is given, the file keeps its local name at the root.
Recursive uploads preserve paths relative to the local directory.

Examples:
  keyfold-cli upload ./file.txt docs/file.txt
  keyfold-cli upload -r ./images/ media/images/
  keyfold-cli upload --content-type application/json ./data config.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "override content-type")
}

func runUpload(_ *cobra.Command, args []string) error {
	localPath := args[0]
	remotePath := ""
	if len(args) > 1 {
		remotePath = args[1]
	}

	c, err := getClient()
	if err != nil {
		return err
	}

	opts := client.UploadOptions{
		LocalPath:   localPath,
		RemotePath:  remotePath,
		ContentType: uploadContentType,
		Recursive:   uploadRecursive,
	}

	results, err := c.Upload(context.Background(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	formatter := getFormatter()
	if err := formatter.FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if client.HasUploadErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
