package redirect

import (
	"context"

	"github.com/pscheid92/redirector/internal/domain"
)

// mockRuleStore implements domain.RuleStore for tests and records every lookup.
type mockRuleStore struct {
	getAliasFn      func(ctx context.Context, d string) (domain.DomainAlias, bool, error)
	getCandidatesFn func(ctx context.Context, d, path string) ([]domain.RedirectRule, error)

	aliasLookups []string
	ruleLookups  []string
}

func (m *mockRuleStore) GetAlias(ctx context.Context, d string) (domain.DomainAlias, bool, error) {
	m.aliasLookups = append(m.aliasLookups, d)
	if m.getAliasFn != nil {
		return m.getAliasFn(ctx, d)
	}
	return domain.DomainAlias{}, false, nil
}

func (m *mockRuleStore) GetCandidates(ctx context.Context, d, path string) ([]domain.RedirectRule, error) {
	m.ruleLookups = append(m.ruleLookups, d)
	if m.getCandidatesFn != nil {
		return m.getCandidatesFn(ctx, d, path)
	}
	return nil, nil
}

func rulesStore(rules ...domain.RedirectRule) *mockRuleStore {
	return &mockRuleStore{
		getCandidatesFn: func(_ context.Context, d, _ string) ([]domain.RedirectRule, error) {
			var out []domain.RedirectRule
			for _, r := range rules {
				if r.Domain == d {
					out = append(out, r)
				}
			}
			return out, nil
		},
	}
}

func exact(d, path, target string) domain.RedirectRule {
	return domain.RedirectRule{Domain: d, Path: path, Target: target, MatchType: domain.MatchExact}
}

func prefix(d, path, target string) domain.RedirectRule {
	return domain.RedirectRule{Domain: d, Path: path, Target: target, MatchType: domain.MatchPrefix}
}
