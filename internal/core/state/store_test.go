package state_test

import (
	"context"
	"testing"

	"github.com/forduniver/wald/internal/core/state"
)

func TestStore_ReadMissingIsNull(t *testing.T) {
	dir := t.TempDir()
	store := state.NewStore()

	got, err := store.Read(context.Background(), dir)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.LastSync != "" {
		t.Errorf("LastSync = %q, want empty", got.LastSync)
	}
}

func TestStore_WriteThenRead(t *testing.T) {
	dir := t.TempDir()
	store := state.NewStore()
	ctx := context.Background()

	const hash = "0123456789abcdef0123456789abcdef01234567"
	if err := store.WriteLastSync(ctx, dir, hash); err != nil {
		t.Fatalf("WriteLastSync: %v", err)
	}

	got, err := store.Read(ctx, dir)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.LastSync != hash {
		t.Errorf("LastSync = %q, want %q", got.LastSync, hash)
	}
}
