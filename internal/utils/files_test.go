package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteJSONCreatesDirAndIndents(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out", "feed.json")
	if err := WriteJSON(p, []map[string]int{{"year": 2020}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "\n  {\n    \"year\": 2020\n  }") {
		t.Fatalf("unexpected json: %s", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := ExpandHome("~/.goodnews/data")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != filepath.Join(home, ".goodnews", "data") {
		t.Fatalf("got %s", got)
	}
	if got, _ := ExpandHome("rel/path"); got != "rel/path" {
		t.Fatalf("relative path changed: %s", got)
	}
}
