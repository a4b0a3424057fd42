// Package config provides 12-factor configuration management for twill.
//
// Configuration is loaded from environment variables with sensible defaults.
// A YAML or TOML file can be layered on top with LoadFile.
//
// Configuration Sections:
//   - Browser: user agent and the option defaults restored by reset_browser
//   - HTTP: retries, rate limiting, TLS verification, redirect limit
//   - Script: script file extension and the default failure policy
//   - Logging: Log level and output format
//
// Example Usage:
//
//	cfg, err := config.LoadFile("twill.yaml")
//	if err != nil {
//		return err
//	}
//	fmt.Println(cfg.Browser.UserAgent)
//
// Environment Variables:
//   - TWILL_USER_AGENT, TWILL_EQUIV_REFRESH, TWILL_MAX_REFRESH_HOPS
//   - TWILL_READONLY_WRITEABLE, TWILL_DEFAULT_REALM
//   - TWILL_HTTP_RETRIES, TWILL_HTTP_RATE_LIMIT, TWILL_VERIFY_TLS, TWILL_MAX_REDIRECTS
//   - TWILL_EXTENSION, TWILL_NEVER_FAIL
//   - LOG_LEVEL, LOG_FORMAT, LOG_DEV
package config
