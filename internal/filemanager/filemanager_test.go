package filemanager_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/forduniver/wald/internal/filemanager"
)

type record struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func TestManager_WriteThenRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.yaml")
	mgr := filemanager.NewManager[record]()
	ctx := context.Background()

	want := &record{Name: "alpha", Count: 3}
	if err := mgr.Write(ctx, path, want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := mgr.Read(ctx, path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if *got != *want {
		t.Errorf("Read() = %+v, want %+v", *got, *want)
	}
}

func TestManager_Read_MissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nope.yaml")
	mgr := filemanager.NewManager[record]()

	_, err := mgr.Read(context.Background(), path)
	if !os.IsNotExist(err) {
		t.Errorf("Read(missing) error = %v, want os.IsNotExist", err)
	}
}

func TestManager_Write_NoLeftoverTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.yaml")
	mgr := filemanager.NewManager[record]()

	if err := mgr.Write(context.Background(), path, &record{Name: "a"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "record.yaml" {
		t.Errorf("directory contains %v, want exactly record.yaml", entries)
	}
}

func TestManager_Update_CreatesWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.yaml")
	mgr := filemanager.NewManager[record]()
	ctx := context.Background()

	err := mgr.Update(ctx, path, func(r *record) error {
		r.Name = "created"
		r.Count = 1
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := mgr.Read(ctx, path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Name != "created" || got.Count != 1 {
		t.Errorf("Read() = %+v, want {created 1}", *got)
	}
}

func TestManager_Update_MutatesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.yaml")
	mgr := filemanager.NewManager[record]()
	ctx := context.Background()

	if err := mgr.Write(ctx, path, &record{Name: "a", Count: 1}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	err := mgr.Update(ctx, path, func(r *record) error {
		r.Count++
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := mgr.Read(ctx, path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Count != 2 {
		t.Errorf("Count = %d, want 2", got.Count)
	}
}

func TestManager_Delete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.yaml")
	mgr := filemanager.NewManager[record]()
	ctx := context.Background()

	if err := mgr.Write(ctx, path, &record{Name: "a"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := mgr.Delete(ctx, path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists after Delete")
	}

	// Deleting an already-absent file is not an error.
	if err := mgr.Delete(ctx, path); err != nil {
		t.Errorf("Delete(already-absent): %v", err)
	}
}
