package storage

import (
	"context"
	"errors"
	"testing"
)

func TestStoreWithoutPool(t *testing.T) {
	var s *Store
	if _, err := s.ListAccounts(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	s = NewStore(nil)
	if _, err := s.ListUsage(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := s.CountAccounts(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	s.Close()
}
