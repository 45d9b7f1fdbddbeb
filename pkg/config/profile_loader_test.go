package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProfile_US(t *testing.T) {
	profilesDir := locateProfiles(t)
	p, err := LoadProfile(profilesDir, "us")
	if err != nil {
		t.Fatalf("LoadProfile(us): %v", err)
	}
	if p.Name != "United States" {
		t.Errorf("expected name 'United States', got %q", p.Name)
	}
	if p.IsIslandMode() {
		t.Error("US should not be island mode")
	}
	if !p.IsAllowed("example.com") {
		t.Error("US denylist should allow non-denylisted hosts")
	}
	if p.IsAllowed("169.254.169.254") {
		t.Error("US should deny the cloud metadata address")
	}
}

func TestLoadProfile_EU_GDPR(t *testing.T) {
	profilesDir := locateProfiles(t)
	p, err := LoadProfile(profilesDir, "eu")
	if err != nil {
		t.Fatalf("LoadProfile(eu): %v", err)
	}
	if p.PIIHandling != "strict" {
		t.Errorf("EU should have strict PII handling, got %q", p.PIIHandling)
	}
	if !p.Retention.RightToErasure {
		t.Error("EU should have right to erasure")
	}
}

func TestLoadProfile_Offline_IslandMode(t *testing.T) {
	profilesDir := locateProfiles(t)
	p, err := LoadProfile(profilesDir, "offline")
	if err != nil {
		t.Fatalf("LoadProfile(offline): %v", err)
	}
	if !p.IsIslandMode() {
		t.Error("offline profile should default to island mode")
	}
	if p.IsAllowed("example.com") {
		t.Error("island mode should deny all outbound probing")
	}
}

func TestLoadAllProfiles(t *testing.T) {
	profilesDir := locateProfiles(t)
	profiles, err := LoadAllProfiles(profilesDir)
	if err != nil {
		t.Fatalf("LoadAllProfiles: %v", err)
	}
	if len(profiles) < 3 {
		t.Errorf("expected at least 3 profiles, got %d", len(profiles))
	}
	for code, p := range profiles {
		if p.Name == "" {
			t.Errorf("profile %s has empty name", code)
		}
	}
}

func TestIsAllowed_Allowlist(t *testing.T) {
	p := &ScanProfile{
		Networking: NetworkingConfig{
			OutboundMode: "allowlist",
			Allowlist:    []string{"api.example.com"},
		},
	}
	if !p.IsAllowed("api.example.com") {
		t.Error("should allow api.example.com")
	}
	if p.IsAllowed("evil.com") {
		t.Error("should deny evil.com")
	}
}

func TestIsAllowed_IslandMode(t *testing.T) {
	p := &ScanProfile{
		Networking: NetworkingConfig{
			IslandMode: true,
		},
	}
	if p.IsAllowed("api.example.com") {
		t.Error("island mode should deny all")
	}
}

func locateProfiles(t *testing.T) string {
	t.Helper()
	candidates := []string{
		"profiles",
		"../config/profiles",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	wd, _ := os.Getwd()
	p := filepath.Join(wd, "profiles")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	t.Skip("profiles directory not found")
	return ""
}
