package blob

import (
	"bytes"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("jpeg bytes go here")

	hash, err := store.Put(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(hash) != 32 {
		t.Fatalf("hash length = %d, want 32", len(hash))
	}

	got, err := store.Get(hash)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("stored content differs from original")
	}
}

func TestPutIsIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("same bytes")

	h1, err := store.Put(data)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := store.Put(data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(h1, h2) {
		t.Fatal("identical content produced different hashes")
	}
}

func TestGetUnknownHash(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(make([]byte, 32)); err == nil {
		t.Fatal("expected an error for an unknown hash")
	}
}
