package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ldi/stride/internal/db"
)

func TestInit(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "stride-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dataDir = ".stride"

	err = runInit([]string{tmpDir})
	if err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	strideDir := filepath.Join(tmpDir, ".stride")
	if _, err := os.Stat(strideDir); os.IsNotExist(err) {
		t.Errorf(".stride directory was not created")
	}

	gitignorePath := filepath.Join(strideDir, ".gitignore")
	content, err := os.ReadFile(gitignorePath)
	if err != nil {
		t.Errorf("failed to read .gitignore: %v", err)
	}
	if string(content) != "stride.db*\n" {
		t.Errorf(".gitignore content mismatch: expected 'stride.db*\\n', got %q", string(content))
	}

	if _, err := os.Stat(filepath.Join(strideDir, "stride.db")); os.IsNotExist(err) {
		t.Errorf("database file was not created")
	}
	if _, err := os.Stat(filepath.Join(strideDir, "config.json")); os.IsNotExist(err) {
		t.Errorf("config file was not created")
	}
}

func TestInitImportsExistingExport(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "stride-test-import-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	strideDir := filepath.Join(tmpDir, ".stride")
	exportDir := filepath.Join(strideDir, "export")
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		t.Fatalf("failed to create export dir: %v", err)
	}

	staffCSV := "id,full_name,age,level,role,management_title\n" +
		"NV_00001,Anna Kovaleva,34,Senior,Technical Lead,Project Manager\n"
	if err := os.WriteFile(filepath.Join(exportDir, "staff.csv"), []byte(staffCSV), 0644); err != nil {
		t.Fatalf("failed to write staff.csv: %v", err)
	}

	dataDir = ".stride"

	if err := runInit([]string{tmpDir}); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	database, err := db.Open(filepath.Join(strideDir, "stride.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer database.Close()

	s, err := database.GetStaff(context.Background(), "NV_00001")
	if err != nil {
		t.Fatalf("failed to get staff: %v", err)
	}
	if s == nil {
		t.Fatal("expected imported staff record")
	}
	if s.FullName != "Anna Kovaleva" {
		t.Errorf("expected imported name, got %q", s.FullName)
	}
}

func TestInitOverwritesGitignore(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "stride-test-overwrite-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	strideDir := filepath.Join(tmpDir, ".stride")
	if err := os.MkdirAll(strideDir, 0755); err != nil {
		t.Fatalf("failed to create .stride dir: %v", err)
	}

	gitignorePath := filepath.Join(strideDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("old-content\n"), 0644); err != nil {
		t.Fatalf("failed to create initial .gitignore: %v", err)
	}

	dataDir = ".stride"

	if err := runInit([]string{tmpDir}); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	content, err := os.ReadFile(gitignorePath)
	if err != nil {
		t.Fatalf("failed to read .gitignore: %v", err)
	}
	if string(content) != "stride.db*\n" {
		t.Errorf(".gitignore was not overwritten: expected 'stride.db*\\n', got %q", string(content))
	}
}
