// Package logger builds the slog.Logger used across the Infrasync client.
//
// The factory produces JSON or text handlers, attaches static attributes,
// and can inject request-scoped attributes from context via extractors.
// Components take a *slog.Logger through their options rather than logging
// through a package-level default.
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithTextFormatter(),
//	    logger.WithAttr(slog.String("service", "infrasync-cli")),
//	)
package logger
