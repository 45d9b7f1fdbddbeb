package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScanProfile is a jurisdiction or environment-scoped policy overlay: it
// governs which hosts the dynamic-probe modules are allowed to reach, which
// compliance frameworks a deployment should emphasize in its verdicts, and
// how long sealed audit records are kept.
type ScanProfile struct {
	Name          string           `yaml:"name" json:"name"`
	Code          string           `yaml:"code" json:"code"`
	DataResidency string           `yaml:"data_residency" json:"data_residency"`
	Compliance    []string         `yaml:"compliance" json:"compliance"`
	PIIHandling   string           `yaml:"pii_handling,omitempty" json:"pii_handling,omitempty"`
	Networking    NetworkingConfig `yaml:"networking" json:"networking"`
	Retention     RetentionConfig  `yaml:"retention" json:"retention"`
}

// NetworkingConfig controls which hosts the dynamic-probe orchestrator may
// issue requests against. A misconfigured allowlist fails closed: an empty
// allowlist under "allowlist" mode allows nothing, never everything.
type NetworkingConfig struct {
	OutboundMode string   `yaml:"outbound_mode" json:"outbound_mode"` // "allowlist" | "denylist" | "island"
	Allowlist    []string `yaml:"allowlist,omitempty" json:"allowlist,omitempty"`
	Denylist     []string `yaml:"denylist,omitempty" json:"denylist,omitempty"`
	IslandMode   bool     `yaml:"island_mode" json:"island_mode"` // if true, block all outbound probing
}

// RetentionConfig governs how long sealed audit records and cached scan
// results are kept before a housekeeping job may purge them.
type RetentionConfig struct {
	AuditLogDays     int  `yaml:"audit_log_days" json:"audit_log_days"`
	PIIRetentionDays int  `yaml:"pii_retention_days,omitempty" json:"pii_retention_days,omitempty"`
	RightToErasure   bool `yaml:"right_to_erasure,omitempty" json:"right_to_erasure,omitempty"`
}

// LoadProfile loads a jurisdiction profile YAML by code, searching the
// profiles directory for profile_<code>.yaml.
func LoadProfile(profilesDir, code string) (*ScanProfile, error) {
	code = strings.ToLower(code)
	path := filepath.Join(profilesDir, fmt.Sprintf("profile_%s.yaml", code))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", code, err)
	}

	var profile ScanProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", code, err)
	}

	if profile.Code == "" {
		profile.Code = code
	}

	return &profile, nil
}

// LoadAllProfiles loads every profile_*.yaml file from the profiles
// directory, keyed by profile code.
func LoadAllProfiles(profilesDir string) (map[string]*ScanProfile, error) {
	matches, err := filepath.Glob(filepath.Join(profilesDir, "profile_*.yaml"))
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]*ScanProfile, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var profile ScanProfile
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		if profile.Code == "" {
			base := filepath.Base(path)
			profile.Code = strings.TrimSuffix(strings.TrimPrefix(base, "profile_"), ".yaml")
		}

		profiles[profile.Code] = &profile
	}

	return profiles, nil
}

// IsIslandMode reports whether the profile blocks all dynamic probing.
func (p *ScanProfile) IsIslandMode() bool {
	return p.Networking.IslandMode || p.Networking.OutboundMode == "island"
}

// IsAllowed reports whether the dynamic-probe orchestrator may issue a
// request to hostname under this profile's networking policy.
func (p *ScanProfile) IsAllowed(hostname string) bool {
	if p.IsIslandMode() {
		return false
	}

	switch p.Networking.OutboundMode {
	case "allowlist":
		for _, h := range p.Networking.Allowlist {
			if h == hostname {
				return true
			}
		}
		return false
	case "denylist":
		for _, h := range p.Networking.Denylist {
			if h == hostname {
				return false
			}
		}
		return true
	default:
		return true
	}
}
