package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SomaCube/internal/model"
)

func TestExportAndImportAllData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	cfg := model.DefaultAppConfig()
	cfg.ServerURL = "http://backup.test"
	cfg.DefaultShape = "tower"

	if err := ExportAllData(path, cfg, nil); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}

	if backup.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %s", backup.Version)
	}
	if backup.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if backup.Config.ServerURL != "http://backup.test" {
		t.Errorf("expected ServerURL to round trip, got %s", backup.Config.ServerURL)
	}
	if backup.Session != nil {
		t.Error("expected no session in backup")
	}
}

func TestExportAllDataWithSession(t *testing.T) {
	sess := newSession(t)
	if err := sess.SelectOrPlace("c"); err != nil {
		t.Fatal(err)
	}
	f := NewSessionFile("", "cube", sess)

	path := filepath.Join(t.TempDir(), "deep", "nested", "backup.json")
	if err := ExportAllData(path, model.DefaultAppConfig(), &f); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Session == nil || backup.Session.ID != f.ID {
		t.Fatalf("expected session %s in backup, got %+v", f.ID, backup.Session)
	}
	if len(backup.Session.Placements) != 1 {
		t.Errorf("expected 1 placement, got %d", len(backup.Session.Placements))
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	_, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportAllDataInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noversion.json")
	if err := os.WriteFile(path, []byte(`{"config":{"server_url":"x"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for missing version")
	}
}
