package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p := Load("")
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.LastTab != "" {
		t.Fatalf("LastTab = %q, want empty", p.LastTab)
	}
	if p.PageSize("#pins") != 0 {
		t.Fatalf("PageSize(#pins) = %d, want 0", p.PageSize("#pins"))
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "submatch")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	body := "theme = \"Slate\"\nlast_tab = \" #pins \"\n\n[items_per_page]\n\"#pins\" = 25\n\"#messages\" = 7\n"
	if err := os.WriteFile(prefsFile, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Slate")
	}
	if p.LastTab != "#pins" {
		t.Fatalf("LastTab = %q, want #pins", p.LastTab)
	}
	if got := p.PageSize("#pins"); got != 25 {
		t.Fatalf("PageSize(#pins) = %d, want 25", got)
	}
	if got := p.PageSize("#messages"); got != 0 {
		t.Fatalf("PageSize(#messages) = %d, want invalid size dropped", got)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "subdir", "prefs.toml")

	p := Defaults()
	p.Theme = "Kanagawa"
	p.LastTab = "#messages"
	p.SetPageSize("#subscriptions", 50)
	if err := Save(prefsFile, p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded := Load(prefsFile)
	if loaded.Theme != "Kanagawa" || loaded.LastTab != "#messages" {
		t.Fatalf("loaded = %+v, want theme Kanagawa and last tab #messages", loaded)
	}
	if got := loaded.PageSize("#subscriptions"); got != 50 {
		t.Fatalf("PageSize(#subscriptions) = %d, want 50", got)
	}
}

func TestSetPageSize_NilMap(t *testing.T) {
	var p Prefs
	p.SetPageSize("#pins", 10)
	if p.PageSize("#pins") != 10 {
		t.Fatalf("PageSize(#pins) = %d, want 10", p.PageSize("#pins"))
	}
}

func TestLoad_EmptyThemeFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load(prefsFile)
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load(prefsFile)
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}
