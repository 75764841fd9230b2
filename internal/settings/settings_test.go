package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != (Settings{}) {
		t.Errorf("expected zero settings, got %+v", s)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	want := Settings{}.Remember("/data/run.pch", "/data/template.docx")

	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestRemember_DoesNotMutateReceiver(t *testing.T) {
	orig := Settings{LastPCHPath: "a.pch"}
	updated := orig.Remember("b.pch", "")
	if orig.LastPCHPath != "a.pch" || orig.RememberPaths {
		t.Errorf("receiver was mutated: %+v", orig)
	}
	if updated.LastPCHPath != "b.pch" || !updated.RememberPaths {
		t.Errorf("unexpected update %+v", updated)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected decode error")
	}
}
