package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestMissingTools(t *testing.T) {
	seen := map[string]bool{"get_dashboard": true, "get_hosts": true, "get_health": true}
	got := missingTools(seen)
	want := []string{"get_problems", "get_security_logs"}
	if len(got) != len(want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("missing[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPreview(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	res := &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(long)}}}
	if p := preview(res); len(p) != 203 {
		t.Errorf("preview length = %d, want 203", len(p))
	}
	if p := preview(&mcp.CallToolResult{}); p != "0 content items" {
		t.Errorf("empty preview = %q", p)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nOPSWATCH_TEST_URL=\"http://zbx\"\n\nOPSWATCH_TEST_USER = 'admin'\nbroken line\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPSWATCH_TEST_URL", "")
	t.Setenv("OPSWATCH_TEST_USER", "")

	loadEnvFile(path)

	if got := os.Getenv("OPSWATCH_TEST_URL"); got != "http://zbx" {
		t.Errorf("URL = %q", got)
	}
	if got := os.Getenv("OPSWATCH_TEST_USER"); got != "admin" {
		t.Errorf("USER = %q", got)
	}
}
