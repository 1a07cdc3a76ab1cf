package director

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerateScenarioPath(t *testing.T) {
	path := GenerateScenarioPath("")

	if !strings.HasPrefix(filepath.Base(path), "flight_") || filepath.Ext(path) != ".yaml" {
		t.Errorf("Unexpected file name: %s", path)
	}
	if filepath.Dir(path) != ScenarioDir {
		t.Errorf("Path should be in %s: %s", ScenarioDir, path)
	}

	if got := GenerateScenarioPath("out"); filepath.Dir(got) != "out" {
		t.Errorf("Path should be in out: %s", got)
	}
}

func TestFindLatestScenario(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		filepath.Join(dir, "flight_2026-02-12_10-00-00.yaml"),
		filepath.Join(dir, "flight_2026-02-13_01-00-00.yaml"),
		filepath.Join(dir, "flight_2026-02-11_15-30-00.yaml"),
	}
	for i, f := range files {
		if err := os.WriteFile(f, []byte("version: \"1.0\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(f, modTime, modTime); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	latest, err := FindLatestScenario(dir)
	if err != nil {
		t.Fatalf("FindLatestScenario failed: %v", err)
	}
	if latest != files[len(files)-1] {
		t.Errorf("Expected latest to be %s, got %s", files[len(files)-1], latest)
	}

	if _, err := FindLatestScenario(t.TempDir()); err == nil {
		t.Error("Expected error for an empty directory")
	}
}
