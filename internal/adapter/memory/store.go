// Package memory provides an in-process domain.RuleStore, loadable from a YAML rules file.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/armon/go-radix"

	"github.com/pscheid92/redirector/internal/domain"
)

// Store keeps aliases and rules in memory. PREFIX rules are indexed in a radix tree
// per domain so candidate lookup walks only the prefixes of the request path.
type Store struct {
	mu      sync.RWMutex
	aliases map[string]domain.DomainAlias
	exact   map[string][]domain.RedirectRule
	prefix  map[string]*radix.Tree
	order   []domain.RedirectRule
}

var _ domain.RuleStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		aliases: make(map[string]domain.DomainAlias),
		exact:   make(map[string][]domain.RedirectRule),
		prefix:  make(map[string]*radix.Tree),
	}
}

// PutAlias stores alias, replacing any alias for the same source domain.
func (s *Store) PutAlias(alias domain.DomainAlias) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases[alias.SourceDomain] = alias
}

// PutRule appends rule. Duplicates are kept in insertion order so that
// integrity problems in seeded data surface at resolution time.
func (s *Store) PutRule(rule domain.RedirectRule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = append(s.order, rule)

	if rule.MatchType != domain.MatchPrefix {
		s.exact[rule.Domain] = append(s.exact[rule.Domain], rule)
		return
	}

	tree, ok := s.prefix[rule.Domain]
	if !ok {
		tree = radix.New()
		s.prefix[rule.Domain] = tree
	}
	var rules []domain.RedirectRule
	if existing, ok := tree.Get(rule.Path); ok {
		rules = existing.([]domain.RedirectRule)
	}
	tree.Insert(rule.Path, append(rules, rule))
}

func (s *Store) GetAlias(_ context.Context, d string) (domain.DomainAlias, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alias, ok := s.aliases[d]
	return alias, ok, nil
}

// GetCandidates returns the case-insensitively equal EXACT rules followed by the
// PREFIX rules on the path from the root to path, shortest first.
func (s *Store) GetCandidates(_ context.Context, d, path string) ([]domain.RedirectRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.RedirectRule
	for _, rule := range s.exact[d] {
		if strings.EqualFold(rule.Path, path) {
			out = append(out, rule)
		}
	}

	if tree, ok := s.prefix[d]; ok {
		tree.WalkPath(path, func(_ string, v interface{}) bool {
			out = append(out, v.([]domain.RedirectRule)...)
			return false
		})
	}
	return out, nil
}

// Aliases returns all aliases in no particular order.
func (s *Store) Aliases() []domain.DomainAlias {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DomainAlias, 0, len(s.aliases))
	for _, a := range s.aliases {
		out = append(out, a)
	}
	return out
}

// Rules returns all rules in insertion order.
func (s *Store) Rules() []domain.RedirectRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.RedirectRule(nil), s.order...)
}

// Ping always succeeds; it lets the store take part in readiness checks.
func (s *Store) Ping(context.Context) error { return nil }
