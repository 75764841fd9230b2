package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/pchreport/internal/report"
	"github.com/dgallion1/pchreport/internal/settings"
)

const twoNodePunch = "$POINT ID = 8000001\n" +
	"      5.000000E+01      1.000000E+00      2.000000E+00      2.000000E+00\n" +
	"$POINT ID = 8000002\n" +
	"      1.200000E+02      3.000000E+00      4.000000E+00      0.000000E+00\n"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NODE_RANGE_START", "NODE_RANGE_END", "LABELS_FILE", "TEMPLATE_PATH", "CHART_WIDTH", "CHART_HEIGHT", "STRICT_TRIADS", "REQUIRE_DATA"} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writePunch(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "run.pch")
	if err := os.WriteFile(path, []byte(twoNodePunch), 0o644); err != nil {
		t.Fatalf("write punch: %v", err)
	}
	return path
}

func TestGenerate_WritesArtifactsAndRemembers(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	pch := writePunch(t, dir)
	out := filepath.Join(dir, "report.docx")
	wb := filepath.Join(dir, "tables.xlsx")
	cfgPath := filepath.Join(dir, "user_settings.json")

	stdout, err := run(t, "generate",
		"--pch", pch, "--out", out, "--workbook", wb,
		"--settings", cfgPath, "--remember",
		"--chart-width", "200", "--chart-height", "150")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "2 charts") {
		t.Errorf("expected chart count in output, got %q", stdout)
	}
	for _, p := range []string{out, wb} {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Errorf("expected non-empty %s (err %v)", p, err)
		}
	}

	saved, err := settings.Load(cfgPath)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if !saved.RememberPaths || saved.LastPCHPath != pch {
		t.Errorf("expected remembered punch path, got %+v", saved)
	}

	// Second run falls back to the remembered punch file.
	out2 := filepath.Join(dir, "again.docx")
	if stdout, err := run(t, "generate", "--out", out2, "--settings", cfgPath,
		"--chart-width", "200", "--chart-height", "150"); err != nil {
		t.Fatalf("generate from settings: %v\n%s", err, stdout)
	}
	if _, err := os.Stat(out2); err != nil {
		t.Errorf("expected %s: %v", out2, err)
	}
}

func TestGenerate_RequiresPunch(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	_, err := run(t, "generate", "--settings", filepath.Join(dir, "none.json"))
	if err == nil || !strings.Contains(err.Error(), "--pch") {
		t.Fatalf("expected missing --pch error, got %v", err)
	}
}

func TestGenerate_InvertedRange(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	pch := writePunch(t, dir)
	if _, err := run(t, "generate", "--pch", pch, "--start", "9", "--end", "1",
		"--settings", filepath.Join(dir, "s.json")); err == nil {
		t.Fatal("expected range error")
	}
}

func TestRMS_JSON(t *testing.T) {
	clearEnv(t)
	pch := writePunch(t, t.TempDir())

	stdout, err := run(t, "rms", "--pch", pch, "--json")
	if err != nil {
		t.Fatalf("rms: %v", err)
	}
	var got report.RMSJSON
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	if len(got.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(got.Nodes))
	}
	v := got.Nodes[1].Values["RMS_100-150"]
	if v == nil || *v < 0.0049999 || *v > 0.0050001 {
		t.Errorf("expected node 8000002 RMS_100-150 = 0.005, got %v", v)
	}
	if got.Nodes[1].Values["RMS_1-100"] != nil {
		t.Error("expected null for band without samples")
	}
}

func TestRMS_MarkdownRespectsRange(t *testing.T) {
	clearEnv(t)
	pch := writePunch(t, t.TempDir())

	stdout, err := run(t, "rms", "--pch", pch, "--start", "8000002", "--end", "8000002")
	if err != nil {
		t.Fatalf("rms: %v", err)
	}
	if strings.Contains(stdout, "| 8000001 |") {
		t.Errorf("expected node 8000001 to be filtered out:\n%s", stdout)
	}
	if !strings.Contains(stdout, "| 8000002 | Node 8000002 | n/a | 0.0050 | n/a |") {
		t.Errorf("unexpected table:\n%s", stdout)
	}
}
