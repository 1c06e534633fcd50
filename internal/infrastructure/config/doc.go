// Package config handles loading and validating Limbx Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with LIMBX_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Circuit definitions are not part of this file; they live in the file
// named by circuits_file and are loaded by the circuit package.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Site.Name)
package config
