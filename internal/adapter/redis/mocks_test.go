package redis

import (
	"context"
	"sync/atomic"

	"github.com/pscheid92/redirector/internal/domain"
)

// mockRuleStore implements domain.RuleStore for tests and counts lookups.
type mockRuleStore struct {
	getAliasFn      func(ctx context.Context, d string) (domain.DomainAlias, bool, error)
	getCandidatesFn func(ctx context.Context, d, path string) ([]domain.RedirectRule, error)

	aliasCalls atomic.Int32
	ruleCalls  atomic.Int32
}

func (m *mockRuleStore) GetAlias(ctx context.Context, d string) (domain.DomainAlias, bool, error) {
	m.aliasCalls.Add(1)
	if m.getAliasFn != nil {
		return m.getAliasFn(ctx, d)
	}
	return domain.DomainAlias{}, false, nil
}

func (m *mockRuleStore) GetCandidates(ctx context.Context, d, path string) ([]domain.RedirectRule, error) {
	m.ruleCalls.Add(1)
	if m.getCandidatesFn != nil {
		return m.getCandidatesFn(ctx, d, path)
	}
	return nil, nil
}
