package store

import (
	"bytes"
	"testing"

	"complib/internal/library"
)

// runStoreContract exercises the behaviour every backend must share.
func runStoreContract(t *testing.T, s library.Store) {
	t.Helper()

	t.Run("absent key returns nil", func(t *testing.T) {
		got, err := s.Get("components")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != nil {
			t.Errorf("Get() = %q, want nil", got)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		want := []byte(`[{"metadata":{"id":"a"}}]`)
		if err := s.Put("components", want); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		got, err := s.Get("components")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Get() = %q, want %q", got, want)
		}
	})

	t.Run("put overwrites", func(t *testing.T) {
		if err := s.Put("config", []byte(`{"name":"one"}`)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := s.Put("config", []byte(`{"name":"two"}`)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		got, err := s.Get("config")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != `{"name":"two"}` {
			t.Errorf("Get() = %q, want %q", got, `{"name":"two"}`)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.Put("history", []byte(`[]`)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := s.Delete("history"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		got, err := s.Get("history")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != nil {
			t.Errorf("Get() after Delete = %q, want nil", got)
		}
	})

	t.Run("delete absent key is not an error", func(t *testing.T) {
		if err := s.Delete("never-written"); err != nil {
			t.Errorf("Delete() error = %v", err)
		}
	})

	if bs, ok := s.(library.BatchStore); ok {
		t.Run("put many", func(t *testing.T) {
			entries := map[string][]byte{
				"components": []byte(`[]`),
				"history":    []byte(`[{"id":1}]`),
			}
			if err := bs.PutMany(entries); err != nil {
				t.Fatalf("PutMany() error = %v", err)
			}
			for k, want := range entries {
				got, err := s.Get(k)
				if err != nil {
					t.Fatalf("Get(%q) error = %v", k, err)
				}
				if !bytes.Equal(got, want) {
					t.Errorf("Get(%q) = %q, want %q", k, got, want)
				}
			}
		})
	}

	t.Run("validate setup", func(t *testing.T) {
		if err := s.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})
}
