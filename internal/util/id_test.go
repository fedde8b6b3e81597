package util

import (
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	id := NewID("book")
	if !strings.HasPrefix(id, "book_") {
		t.Fatalf("missing prefix: %q", id)
	}
	if len(id) != len("book_")+32 {
		t.Fatalf("unexpected length: %q", id)
	}
	if NewID("") == "" {
		t.Fatal("empty prefix produced empty ID")
	}

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID("x")
		if seen[id] {
			t.Fatalf("duplicate ID %q", id)
		}
		seen[id] = true
	}
}

func TestNewCommentID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewCommentID()
		if !strings.HasPrefix(id, "c") {
			t.Fatalf("unexpected shape: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate comment ID %q", id)
		}
		seen[id] = true
	}
}
