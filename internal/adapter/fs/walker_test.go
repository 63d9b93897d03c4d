package fs

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"tcpou/config"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	root, _ = filepath.Abs(root)
	var out []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func walk(t *testing.T, w *Walker, root string) []string {
	t.Helper()
	infos, err := w.Walk(root)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	paths := make([]string, 0, len(infos))
	for _, info := range infos {
		paths = append(paths, info.Path)
	}
	return relPaths(t, root, paths)
}

func TestWalker_IncludesAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"POUs/MAIN.TcPOU":              "x",
		"POUs/FB_Motor.tcpou":          "x",
		"POUs/readme.txt":              "x",
		"_Boot/Port_851/FB_Copy.TcPOU": "x",
	})

	w := NewWalker([]string{"**/*.TcPOU", "**/*.tcpou"}, []string{"**/_Boot/**"}, false)
	got := walk(t, w, root)

	want := []string{"POUs/FB_Motor.tcpou", "POUs/MAIN.TcPOU"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %s, got %s", want[i], got[i])
		}
	}
}

func TestWalker_RespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":         "generated/\nScratch.TcPOU\n",
		"MAIN.TcPOU":         "x",
		"Scratch.TcPOU":      "x",
		"generated/FB.TcPOU": "x",
		"lib/FB_Valve.TcPOU": "x",
	})

	got := walk(t, NewWalker([]string{"**/*.TcPOU"}, nil, true), root)
	if len(got) != 2 || got[0] != "MAIN.TcPOU" || got[1] != "lib/FB_Valve.TcPOU" {
		t.Errorf("unexpected files: %v", got)
	}

	got = walk(t, NewWalker([]string{"**/*.TcPOU"}, nil, false), root)
	if len(got) != 4 {
		t.Errorf("expected gitignore to be ignored when disabled, got %v", got)
	}
}

func TestWalker_DefaultIncludesEverything(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "x", "b/c.TcPOU": "x"})

	got := walk(t, NewWalker(nil, nil, false), root)
	if len(got) != 2 {
		t.Errorf("expected 2 files, got %v", got)
	}
}

func TestWalker_DefaultConfigMatchesAnyExtensionCase(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"A.TcPOU":     "x",
		"B.tcpou":     "x",
		"C.TcPou":     "x",
		"D.tcPOU":     "x",
		"E.TcPOU.bak": "x",
		"F.TcDUT":     "x",
	})

	cfg := config.DefaultConfig()
	got := walk(t, NewWalker(cfg.Index.Includes, cfg.Index.Excludes, false), root)
	want := []string{"A.TcPOU", "B.tcpou", "C.TcPou", "D.tcPOU"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestWalker_ReportsModTimeAndSize(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"MAIN.TcPOU": "hello"})

	infos, err := NewWalker(nil, nil, false).Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 file, got %d", len(infos))
	}
	if infos[0].Size != 5 {
		t.Errorf("expected size 5, got %d", infos[0].Size)
	}
	if infos[0].ModTime == 0 {
		t.Error("expected mod time to be set")
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.TcPOU")
	if err := os.WriteFile(path, []byte("<TcPlcObject/>"), 0644); err != nil {
		t.Fatal(err)
	}
	content, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if content != "<TcPlcObject/>" {
		t.Errorf("unexpected content %q", content)
	}
}
