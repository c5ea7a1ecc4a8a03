package memory

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pscheid92/redirector/internal/domain"
)

// RulesFile is the on-disk layout of a rules file.
type RulesFile struct {
	Aliases   []AliasEntry    `yaml:"aliases"`
	Redirects []RedirectEntry `yaml:"redirects"`
}

type AliasEntry struct {
	SourceDomain string `yaml:"source_domain"`
	TargetDomain string `yaml:"target_domain"`
}

type RedirectEntry struct {
	Domain    string `yaml:"domain"`
	Path      string `yaml:"path"`
	Target    string `yaml:"target"`
	MatchType string `yaml:"match_type"`
}

// LoadFile reads a YAML rules file into a new Store.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules file: %w", err)
	}
	defer func() { _ = f.Close() }()

	store, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return store, nil
}

// Load decodes YAML rules from r. Structural problems (unknown match type, missing
// domain or path) are rejected; records with missing targets are kept so that they
// are reported as data-integrity errors when resolved.
func Load(r io.Reader) (*Store, error) {
	var file RulesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	store := NewStore()
	for i, a := range file.Aliases {
		if a.SourceDomain == "" {
			return nil, fmt.Errorf("aliases[%d]: source_domain is required", i)
		}
		store.PutAlias(domain.DomainAlias{SourceDomain: a.SourceDomain, TargetDomain: a.TargetDomain})
	}

	for i, e := range file.Redirects {
		if e.Domain == "" || e.Path == "" {
			return nil, fmt.Errorf("redirects[%d]: domain and path are required", i)
		}
		matchType, err := domain.ParseMatchType(e.MatchType)
		if err != nil {
			return nil, fmt.Errorf("redirects[%d]: %w", i, err)
		}
		store.PutRule(domain.RedirectRule{Domain: e.Domain, Path: e.Path, Target: e.Target, MatchType: matchType})
	}

	return store, nil
}
