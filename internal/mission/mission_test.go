package mission

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeMission(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write mission file: %v", err)
	}
}

func TestRegistryGet_LoadsYAML(t *testing.T) {
	dir := t.TempDir()
	writeMission(t, dir, "video-games.yaml", `
name: Video Games Watch
categories: [releases, studios, hardware]
primary: releases
`)

	reg := NewRegistry(dir)
	m, err := reg.Get("video-games")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	want := &Mission{
		ID:         "video-games",
		Name:       "Video Games Watch",
		Categories: []string{"releases", "studios", "hardware"},
		Primary:    "releases",
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("mission mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryGet_DefaultFallback(t *testing.T) {
	reg := NewRegistry(t.TempDir())

	m, err := reg.Get("ai-news")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if m.Primary != "headlines" {
		t.Errorf("Primary = %q, want headlines", m.Primary)
	}
	if len(m.Categories) != 4 {
		t.Errorf("Categories = %v, want 4 entries", m.Categories)
	}
}

func TestRegistryGet_PrimaryDefaultsToFirst(t *testing.T) {
	dir := t.TempDir()
	writeMission(t, dir, "m.yaml", `
categories: [alpha, beta]
`)

	m, err := NewRegistry(dir).Get("m")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if m.Primary != "alpha" {
		t.Errorf("Primary = %q, want alpha", m.Primary)
	}
}

func TestLoadFile_RejectsBadPrimary(t *testing.T) {
	dir := t.TempDir()
	writeMission(t, dir, "bad.yaml", `
categories: [alpha]
primary: missing
`)

	if _, err := LoadFile(filepath.Join(dir, "bad.yaml")); err == nil {
		t.Error("expected error for primary not in categories")
	}
}

func TestLoadFile_RejectsEmptyCategories(t *testing.T) {
	dir := t.TempDir()
	writeMission(t, dir, "empty.yaml", `
name: Empty
`)

	if _, err := LoadFile(filepath.Join(dir, "empty.yaml")); err == nil {
		t.Error("expected error for mission without categories")
	}
}

func TestHasCategory(t *testing.T) {
	m := Default("ai-news")
	if !m.HasCategory("research") {
		t.Error("expected research to be a known category")
	}
	if m.HasCategory("sports") {
		t.Error("did not expect sports to be a known category")
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeMission(t, dir, "a.yaml", "categories: [x]")
	writeMission(t, dir, "b.yaml", "categories: [y]")
	writeMission(t, dir, "notes.txt", "ignored")

	ids, err := NewRegistry(dir).List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}
