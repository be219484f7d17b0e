// Package config provides application configuration management.
//
// The config package handles loading and validation of the application's
// configuration from YAML files and CODESCORE_* environment variables. It
// covers the transport settings, the execution sandbox, the evaluation
// result store and logging.
//
// Usage:
//
//	cfg, err := config.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Execution timeout: %s\n", cfg.GetTimeout())
package config
