// Package logging provides structured logging using uber/zap.
//
// Console output is the default; JSON is available for collecting logs from
// unattended runs. Script runs log every command at debug level, failures at
// error level and navigation results at info level.
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	logger.Info("at page", zap.String("url", "http://example.com/"))
package logging
