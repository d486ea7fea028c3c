// Package config provides user configuration management for fritzpowerline.
//
// This package manages a YAML configuration file holding the router
// connection settings (address, port, user, TLS, timeout), the
// X_AVM-DE_Homeplug service instance and the default output format.
// Settings are validated with go-playground/validator; every invalid field
// is reported at once as ValidationErrors.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/fritzpowerline/config.yaml or $HOME/.config/fritzpowerline/config.yaml
//   - macOS: $HOME/.config/fritzpowerline/config.yaml
//   - Windows: %LOCALAPPDATA%\fritzpowerline\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores the router password. ResolvePassword
// takes it from a flag, the FRITZ_PASSWORD environment variable or an
// interactive prompt, and returns ErrPasswordRequired when none is given.
//
// # Usage Example
//
//	settings, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	password, err := config.ResolvePassword(config.PasswordSource{Flag: flagPassword})
//	if errors.Is(err, config.ErrPasswordRequired) {
//	    log.Fatal("password required")
//	}
//
//	client := tr064.NewClient(settings.ClientConfig(password))
package config
