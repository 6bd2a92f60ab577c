package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/validation"
)

// ValidationProfile is a named, file-backed preset for run options.
// Receiving authorities typically ship one profile per exchange partner
// (strictness, skipped rules, jurisdiction focus).
type ValidationProfile struct {
	Name        string `yaml:"name" json:"name"`
	Code        string `yaml:"code" json:"code"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Jurisdictions []string `yaml:"jurisdictions,omitempty" json:"jurisdictions,omitempty"`
	EnablePillar2 *bool    `yaml:"enable_pillar2,omitempty" json:"enable_pillar2,omitempty"`
	FailFast      bool     `yaml:"fail_fast,omitempty" json:"fail_fast,omitempty"`
	MaxIssues     int      `yaml:"max_issues,omitempty" json:"max_issues,omitempty"`
	MinSeverity   string   `yaml:"min_severity,omitempty" json:"min_severity,omitempty"`
	Categories    []string `yaml:"categories,omitempty" json:"categories,omitempty"`
	SkipRules     []string `yaml:"skip_rules,omitempty" json:"skip_rules,omitempty"`
	IncludePassed bool     `yaml:"include_passed,omitempty" json:"include_passed,omitempty"`
	TestMode      bool     `yaml:"test_mode,omitempty" json:"test_mode,omitempty"`
}

// Options converts the profile into engine run options.
func (p *ValidationProfile) Options() validation.Options {
	opts := validation.DefaultOptions()
	opts.Jurisdictions = p.Jurisdictions
	if p.EnablePillar2 != nil {
		opts.EnablePillar2 = *p.EnablePillar2
	}
	opts.FailFast = p.FailFast
	opts.MaxIssues = p.MaxIssues
	opts.MinSeverity = findings.Severity(p.MinSeverity)
	for _, c := range p.Categories {
		opts.Categories = append(opts.Categories, findings.Category(c))
	}
	opts.SkipRules = p.SkipRules
	opts.IncludePassed = p.IncludePassed
	opts.TestMode = p.TestMode
	return opts
}

// LoadProfile loads a validation profile by code. It searches the
// profiles directory for profile_<code>.yaml.
func LoadProfile(profilesDir, code string) (*ValidationProfile, error) {
	code = strings.ToLower(code)
	path := filepath.Join(profilesDir, fmt.Sprintf("profile_%s.yaml", code))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", code, err)
	}

	var profile ValidationProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", code, err)
	}

	if profile.Code == "" {
		profile.Code = code
	}

	return &profile, nil
}

// LoadAllProfiles loads every profile_*.yaml file from the profiles
// directory, keyed by code.
func LoadAllProfiles(profilesDir string) (map[string]*ValidationProfile, error) {
	matches, err := filepath.Glob(filepath.Join(profilesDir, "profile_*.yaml"))
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]*ValidationProfile, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var profile ValidationProfile
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
