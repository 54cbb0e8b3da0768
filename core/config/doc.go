// Package config provides configuration management for cpk-sync.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all settings, divided
// into subsections:
//   - Cpk: reconciliation settings (CPK_DEBUG trace toggle, CPK_SCHEMA
//     layout selector)
//   - Log: logging level and format
//
// Environment variables map onto nested keys through an underscore
// replacer, so CPK_DEBUG=1 sets cpk.debug and LOG_LEVEL=debug sets
// log.level.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Cpk.Schema)
package config
