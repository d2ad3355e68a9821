// Package logging provides structured logging for the gateway.
//
// Entries are JSON lines produced by log/slog. Every run is tagged with a
// short correlation id so that the lines written by one gateway process can
// be picked out of a shared log file; arbitration ticks and agents add their
// own attributes through child loggers.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(dir, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	cid := logging.NewCorrelationID()
//	log := logger.WithCorrelationID(cid)
//	log.Info("gateway started")
//	log.WithTick(42).Debug("intent committed", "agent", "voice")
//
// When dir is empty the logger writes to stderr. Otherwise it appends to
// dir/gateway.log and rotates that file by size.
//
// # Thread Safety
//
// [Logger] and [RotatingWriter] are safe for concurrent use. Child loggers
// share the parent's writer, so closing any of them closes the file.
package logging
