package memory

import (
	"context"
	"testing"

	"github.com/pscheid92/redirector/internal/domain"
	"github.com/pscheid92/redirector/internal/redirect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(d, path, target string, mt domain.MatchType) domain.RedirectRule {
	return domain.RedirectRule{Domain: d, Path: path, Target: target, MatchType: mt}
}

func TestStore_GetAlias(t *testing.T) {
	s := NewStore()
	s.PutAlias(domain.DomainAlias{SourceDomain: "www.a.com", TargetDomain: "a.com"})

	alias, ok, err := s.GetAlias(context.Background(), "www.a.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a.com", alias.TargetDomain)

	_, ok, err = s.GetAlias(context.Background(), "a.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_GetCandidates_PrefixesOnly(t *testing.T) {
	s := NewStore()
	s.PutRule(rule("a.com", "/", "root", domain.MatchPrefix))
	s.PutRule(rule("a.com", "/blog", "blog", domain.MatchPrefix))
	s.PutRule(rule("a.com", "/blog/2024", "2024", domain.MatchPrefix))
	s.PutRule(rule("a.com", "/shop", "shop", domain.MatchPrefix))
	s.PutRule(rule("b.com", "/", "other", domain.MatchPrefix))

	got, err := s.GetCandidates(context.Background(), "a.com", "/blog/2024/post")
	require.NoError(t, err)

	targets := make([]string, len(got))
	for i, r := range got {
		targets[i] = r.Target
	}
	assert.Equal(t, []string{"root", "blog", "2024"}, targets)
}

func TestStore_GetCandidates_ExactIsCaseInsensitive(t *testing.T) {
	s := NewStore()
	s.PutRule(rule("a.com", "/About", "about", domain.MatchExact))
	s.PutRule(rule("a.com", "/contact", "contact", domain.MatchExact))

	got, err := s.GetCandidates(context.Background(), "a.com", "/about")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "about", got[0].Target)
}

func TestStore_DuplicatePrefixKeepsInsertionOrder(t *testing.T) {
	s := NewStore()
	s.PutRule(rule("a.com", "/x", "first", domain.MatchPrefix))
	s.PutRule(rule("a.com", "/x", "second", domain.MatchPrefix))

	target, found, err := redirect.NewResolver(s).Resolve(context.Background(), "a.com", "/x/y")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "first", target)
}

func TestStore_WithResolver_ExactBeatsPrefix(t *testing.T) {
	s := NewStore()
	s.PutRule(rule("d", "/path1", "https://x.com/p", domain.MatchPrefix))
	s.PutRule(rule("d", "/path1", "https://x.com/e", domain.MatchExact))

	target, found, err := redirect.NewResolver(s).Resolve(context.Background(), "d", "/path1")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://x.com/e", target)
}

func TestStore_RulesAndAliases(t *testing.T) {
	s := NewStore()
	s.PutAlias(domain.DomainAlias{SourceDomain: "www.a.com", TargetDomain: "a.com"})
	s.PutRule(rule("a.com", "/b", "b", domain.MatchPrefix))
	s.PutRule(rule("a.com", "/a", "a", domain.MatchExact))

	assert.Len(t, s.Aliases(), 1)
	rules := s.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "b", rules[0].Target)
	assert.Equal(t, "a", rules[1].Target)
	assert.NoError(t, s.Ping(context.Background()))
}
