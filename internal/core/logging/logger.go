package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// Session derives a logger for one proofreading session from base.
func Session(base zerolog.Logger, sessionID, documentID string) zerolog.Logger {
	return base.With().
		Str("session_id", sessionID).
		Str("document_id", documentID).
		Logger()
}
