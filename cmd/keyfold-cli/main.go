package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyfold/keyfold/client"
)

var (
	version = "dev"

	cfgFile     string
	endpoint    string
	secret      string
	profileName string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "keyfold-cli",
	Version: version,
	Short:   "Client for keyfold object storage",
	Long: `Keyfold CLI - client for keyfold servers.

Objects live in a flat key namespace; slashes in keys make up the
folder view. Commands:
  - list:     list the files and folders of a single folder
  - upload:   upload a file or directory
  - mkdir:    create an empty folder
  - download: download a file
  - delete:   delete files or empty folders
  - auth:     verify the configured secret against the server`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.keyfold/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:8292, env: KEYFOLD_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&secret, "secret", "s", "", "access secret (env: KEYFOLD_SECRET)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name (env: KEYFOLD_PROFILE)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}

// getConfigPath returns the config file path from flag, env, or default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := client.ConfigPathFromEnv(); p != "" {
		return p
	}
	return client.DefaultConfigPath()
}

// buildConfig merges config from profile, env vars, and flags (flags take precedence).
func buildConfig() (*client.Config, error) {
	var configs []*client.Config

	// 1. Resolve a profile from the config file
	configPath := getConfigPath()
	if configPath != "" {
		configFile, err := client.LoadConfigFile(configPath)
		if err != nil {
			// Only error if user explicitly specified a config file
			if cfgFile != "" {
				return nil, err
			}
		} else {
			name := profileName
			if name == "" {
				name = client.ProfileFromEnv()
			}
			p, profileErr := configFile.GetProfile(name)
			if profileErr != nil {
				if name != "" {
					return nil, profileErr
				}
			} else {
				configs = append(configs, client.ConfigFromProfile(p))
			}
		}
	}

	// 2. Load from environment variables
	configs = append(configs, client.ConfigFromEnv())

	// 3. Load from flags
	configs = append(configs, &client.Config{
		Endpoint: endpoint,
		Secret:   secret,
	})

	return client.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() client.Formatter {
	return client.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*client.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return client.New(cfg)
}

// handleError formats an error and returns it.
func handleError(w io.Writer, err error) error {
	formatter := getFormatter()
	_ = formatter.FormatError(w, err)
	return &exitError{code: 1}
}

// exitError is returned when we want to exit with a specific code
// but don't want cobra to print an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}
