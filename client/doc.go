// Package client provides a client library for keyfold servers.
//
// It supports list, upload, mkdir, download, and delete operations. The
// configured access secret travels in the Authorization header of every
// request; servers without a secret accept requests without one.
//
// # Basic Usage
//
// Create a client and upload a file:
//
//	cfg := &client.Config{
//		Endpoint: "http://localhost:8292",
//		Secret:   "your-secret",
//	}
//
//	c, err := client.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := c.Upload(ctx, client.UploadOptions{
//		LocalPath:  "./file.txt",
//		RemotePath: "documents/file.txt",
//	})
//
// # Profile Configuration
//
// Use profiles to manage multiple server configurations:
//
//	configFile, err := client.LoadConfigFile("~/.keyfold/config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := client.ConfigFromProfile(profile)
//	c, err := client.New(cfg)
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := client.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package client
