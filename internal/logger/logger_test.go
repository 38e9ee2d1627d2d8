package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// capture redirects stdout around fn and returns what was printed.
func capture(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestLevels_CarryTagAndMessage(t *testing.T) {
	out := capture(t, func() {
		Info("CATALOG", "building")
		Success("DB", "opened")
		Warn("LOGS", "skipped rows")
		Error("SCAN", "failed")
	})

	for _, want := range []string{"[CATALOG]", "building", "[DB]", "opened", "[LOGS]", "skipped rows", "[SCAN]", "failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBanner_DefaultsToDev(t *testing.T) {
	out := capture(t, func() {
		Banner("v1.2.3")
		Banner("")
	})
	if !strings.Contains(out, "v1.2.3") {
		t.Errorf("banner missing version:\n%s", out)
	}
	if !strings.Contains(out, "dev") {
		t.Errorf("empty version should fall back to dev:\n%s", out)
	}
}

func TestSectionAndStats_Format(t *testing.T) {
	out := capture(t, func() {
		Section("Market Data")
		Stats("Items", 42)
	})
	if !strings.Contains(out, "== Market Data ==") {
		t.Errorf("section header missing:\n%s", out)
	}
	if !strings.Contains(out, "Items:") || !strings.Contains(out, "42") {
		t.Errorf("stats line missing key or value:\n%s", out)
	}
}
