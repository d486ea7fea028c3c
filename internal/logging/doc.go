// Package logging provides structured logging for fritzpowerline.
//
// This package wraps a global zap logger with convenience functions. It is
// silent by default so that the CLI's curated output stays clean; set
// FRITZPOWERLINE_LOG_LEVEL (or pass --log-level) to "debug", "info", "warn"
// or "error" to see log lines on stderr.
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("Powerline devices enumerated",
//	    zap.String("service", "X_AVM-DE_Homeplug1"),
//	    zap.Int("devices", 3),
//	)
//
// # Specialized Logging
//
// TR-064 calls and index probes have dedicated helpers:
//
//	logging.LogAction(service, action, duration, err)
//	logging.LogProbe(service, index, "found")
//
// # Configuration
//
//	if err := logging.Initialize(level); err != nil {
//	    return err
//	}
//	defer logging.Sync()
package logging
