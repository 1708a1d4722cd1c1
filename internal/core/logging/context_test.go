package logging

import (
	"context"
	"testing"
)

func TestWithSessionID(t *testing.T) {
	ctx := WithSessionID(context.Background(), "0b9d6c1e")

	if got := GetSessionID(ctx); got != "0b9d6c1e" {
		t.Errorf("GetSessionID() = %q, want %q", got, "0b9d6c1e")
	}
}

func TestWithDocumentID(t *testing.T) {
	ctx := WithDocumentID(context.Background(), "notes.md")

	if got := GetDocumentID(ctx); got != "notes.md" {
		t.Errorf("GetDocumentID() = %q, want %q", got, "notes.md")
	}
}

func TestGetIDs_NotPresent(t *testing.T) {
	ctx := context.Background()

	if got := GetSessionID(ctx); got != "" {
		t.Errorf("GetSessionID() = %q, want empty string", got)
	}
	if got := GetDocumentID(ctx); got != "" {
		t.Errorf("GetDocumentID() = %q, want empty string", got)
	}
}
