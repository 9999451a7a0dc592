// Package config loads and validates keyfold configuration.
//
// Configuration merges four sources, highest precedence first: CLI flags,
// KEYFOLD_* environment variables, yaml config files, built-in defaults.
//
// # Keys
//
//	server.port       HTTP listen port (default 8292)
//	auth.secret       shared secret; empty disables the gate (default "")
//	storage.backend   sqlite | filesystem (default sqlite)
//	storage.path      blob / tree directory (default ./data)
//	database.dsn      sqlite database file (default keyfold.db)
//	cors.*            CORS middleware options
//	log.level         debug | info | warn | error (default info)
//
// # Example
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    return err
//	}
package config
