package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputPath(t *testing.T) {
	cases := map[string]string{
		"song.mml":        "song.fixed.mml",
		"dir/song.txt":    "dir/song.fixed.txt",
		"noext":           "noext.fixed",
		"dir.v2/song.mml": "dir.v2/song.fixed.mml",
	}
	for in, want := range cases {
		if got := outputPath(in, ".fixed"); got != want {
			t.Fatalf("%s: expected %s, got %s", in, want, got)
		}
	}
}

func TestResolveMMLInput(t *testing.T) {
	got, err := resolveMMLInput("ignored.mml", "MML@c;", nil)
	if err != nil || got != "MML@c;" {
		t.Fatalf("inline text must win, got %q %v", got, err)
	}
	got, err = resolveMMLInput("-", "", strings.NewReader("MML@d;"))
	if err != nil || got != "MML@d;" {
		t.Fatalf("expected stdin text, got %q %v", got, err)
	}
	path := filepath.Join(t.TempDir(), "song.mml")
	if err := os.WriteFile(path, []byte("MML@e;"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = resolveMMLInput(path, "", nil)
	if err != nil || got != "MML@e;" {
		t.Fatalf("expected file text, got %q %v", got, err)
	}
}

func TestCheckOutput(t *testing.T) {
	var buf bytes.Buffer
	needsFix, err := check(&buf, "MML@t120l8cdeft150c,t120c2t150c?;")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !needsFix {
		t.Fatalf("expected misalignment")
	}
	out := buf.String()
	for _, want := range []string{"track 2: 12 chars", "[4 1] misaligned, target 4", "unsupported characters: ?", "duration: "} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFixCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"fix", "-q", "--mml", "MML@l4cdefg,l4cdefgr;"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "MML@t120cdefg,t120cdefgr;" {
		t.Fatalf("unexpected output %s", got)
	}
}

func TestFixBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.mml")
	bad := filepath.Join(dir, "b.mml")
	if err := os.WriteFile(good, []byte("MML@l4cdefg;"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("cdefg"), 0o644); err != nil {
		t.Fatal(err)
	}
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"fix", "-q", good, bad})
	if err := rootCmd.Execute(); err == nil || !strings.Contains(err.Error(), "1 files failed") {
		t.Fatalf("expected one failure, got %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.fixed.mml"))
	if err != nil {
		t.Fatalf("expected fixed output: %v", err)
	}
	if string(data) != "MML@t120cdefg;\n" {
		t.Fatalf("unexpected fixed output %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "b.fixed.mml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("failed input must not produce output, got %v", err)
	}
}
