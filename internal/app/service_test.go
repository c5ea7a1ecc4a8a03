package app

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/pscheid92/redirector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is a map-backed domain.RuleStore that records rule lookups.
type fakeStore struct {
	aliases map[string]domain.DomainAlias
	rules   []domain.RedirectRule

	aliasErr error
	rulesErr error

	ruleLookups []string
}

func (f *fakeStore) GetAlias(_ context.Context, d string) (domain.DomainAlias, bool, error) {
	if f.aliasErr != nil {
		return domain.DomainAlias{}, false, f.aliasErr
	}
	a, ok := f.aliases[d]
	return a, ok, nil
}

func (f *fakeStore) GetCandidates(_ context.Context, d, _ string) ([]domain.RedirectRule, error) {
	f.ruleLookups = append(f.ruleLookups, d)
	if f.rulesErr != nil {
		return nil, f.rulesErr
	}
	var out []domain.RedirectRule
	for _, r := range f.rules {
		if r.Domain == d {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestHandle_AliasScenario(t *testing.T) {
	store := &fakeStore{
		aliases: map[string]domain.DomainAlias{
			"old.com": {SourceDomain: "old.com", TargetDomain: "new.com"},
		},
		rules: []domain.RedirectRule{
			{Domain: "new.com", Path: "/", Target: "https://x.com/home", MatchType: domain.MatchPrefix},
			{Domain: "old.com", Path: "/", Target: "https://x.com/never", MatchType: domain.MatchPrefix},
		},
	}
	svc := NewServiceForStore(store)

	res, err := svc.Handle(context.Background(), "old.com", "/anything", nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusMovedPermanently, res.Status)
	assert.Equal(t, "https://x.com/home", res.Location)
	assert.Equal(t, "new.com", res.ResolvedDomain)
	assert.True(t, res.Found())
	assert.Equal(t, []string{"new.com"}, store.ruleLookups, "original domain must not be used for rule lookups")
}

func TestHandle_NoAliasUsesRequestDomain(t *testing.T) {
	store := &fakeStore{
		rules: []domain.RedirectRule{
			{Domain: "plain.com", Path: "/docs", Target: "https://docs.x.com", MatchType: domain.MatchExact},
		},
	}

	res, err := NewServiceForStore(store).Handle(context.Background(), "plain.com", "/docs", nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusMovedPermanently, res.Status)
	assert.Equal(t, "plain.com", res.ResolvedDomain)
	assert.Equal(t, "https://docs.x.com", res.Location)
}

func TestHandle_NotFound(t *testing.T) {
	store := &fakeStore{}

	res, err := NewServiceForStore(store).Handle(context.Background(), "plain.com", "/missing", url.Values{"utm": {"x"}})

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "plain.com", res.ResolvedDomain)
	assert.Empty(t, res.Location, "query must never be attached to a 404")
	assert.False(t, res.Found())
}

func TestHandle_QueryAppendedOnce(t *testing.T) {
	store := &fakeStore{
		rules: []domain.RedirectRule{
			{Domain: "d.com", Path: "/", Target: "https://x.com/home", MatchType: domain.MatchPrefix},
			{Domain: "d.com", Path: "/q", Target: "https://x.com/search?lang=en", MatchType: domain.MatchExact},
		},
	}
	svc := NewServiceForStore(store)

	tests := []struct {
		name  string
		path  string
		query url.Values
		want  string
	}{
		{"no query", "/a", nil, "https://x.com/home"},
		{"empty query", "/a", url.Values{}, "https://x.com/home"},
		{"single", "/a", url.Values{"ref": {"mail"}}, "https://x.com/home?ref=mail"},
		{"encoded and sorted", "/a", url.Values{"q": {"a b&c"}, "a": {"1"}}, "https://x.com/home?a=1&q=a+b%26c"},
		{"multi value", "/a", url.Values{"tag": {"x", "y"}}, "https://x.com/home?tag=x&tag=y"},
		{"target with query", "/q", url.Values{"ref": {"mail"}}, "https://x.com/search?lang=en&ref=mail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Handle(context.Background(), "d.com", tt.path, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Location)
		})
	}
}

func TestHandle_ExactWinsOverPrefix(t *testing.T) {
	store := &fakeStore{
		rules: []domain.RedirectRule{
			{Domain: "d", Path: "/path1", Target: "https://x.com/p", MatchType: domain.MatchPrefix},
			{Domain: "d", Path: "/path1", Target: "https://x.com/e", MatchType: domain.MatchExact},
		},
	}

	res, err := NewServiceForStore(store).Handle(context.Background(), "d", "/path1", nil)

	require.NoError(t, err)
	assert.Equal(t, "https://x.com/e", res.Location)
}

func TestHandle_StoreUnavailableIsNotA404(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeStore
	}{
		{"alias lookup fails", &fakeStore{aliasErr: errors.New("throttled")}},
		{"rule lookup fails", &fakeStore{rulesErr: context.DeadlineExceeded}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewServiceForStore(tt.store).Handle(context.Background(), "d.com", "/", nil)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
			assert.Equal(t, Resolution{}, res)
		})
	}
}

func TestHandle_DataIntegrityErrors(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeStore
	}{
		{
			name: "malformed alias",
			store: &fakeStore{aliases: map[string]domain.DomainAlias{
				"d.com": {SourceDomain: "d.com"},
			}},
		},
		{
			name: "duplicate exact rules",
			store: &fakeStore{rules: []domain.RedirectRule{
				{Domain: "d.com", Path: "/x", Target: "https://a", MatchType: domain.MatchExact},
				{Domain: "d.com", Path: "/X", Target: "https://b", MatchType: domain.MatchExact},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewServiceForStore(tt.store).Handle(context.Background(), "d.com", "/x", nil)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrDataIntegrity)
			assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
		})
	}
}
