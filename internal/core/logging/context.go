package logging

import "context"

type contextKey string

const (
	sessionIDKey  contextKey = "session_id"
	documentIDKey contextKey = "document_id"
)

// WithSessionID adds a proofreading session ID to the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithDocumentID adds the ID of the bound document to the context.
func WithDocumentID(ctx context.Context, documentID string) context.Context {
	return context.WithValue(ctx, documentIDKey, documentID)
}

// GetSessionID retrieves the session ID from the context.
// Returns empty string if not present.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetDocumentID retrieves the document ID from the context.
// Returns empty string if not present.
func GetDocumentID(ctx context.Context) string {
	if id, ok := ctx.Value(documentIDKey).(string); ok {
		return id
	}
	return ""
}
