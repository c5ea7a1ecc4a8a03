package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/redirector/internal/adapter/memory"
	"github.com/pscheid92/redirector/internal/app"
	"github.com/pscheid92/redirector/internal/domain"
)

const cleanRules = `
aliases:
  - source_domain: old.com
    target_domain: new.com
redirects:
  - domain: new.com
    path: /
    target: https://x.com/home
    match_type: prefix
  - domain: new.com
    path: /about
    target: https://x.com/about
    match_type: exact
`

const brokenRules = `
redirects:
  - domain: a.com
    path: /Docs
    target: https://x.com/1
    match_type: exact
  - domain: a.com
    path: /docs
    target: https://x.com/2
    match_type: exact
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLint_Clean(t *testing.T) {
	path := writeFile(t, cleanRules)

	out, err := execute("lint", path)

	require.NoError(t, err)
	assert.Contains(t, out, "1 aliases, 2 rules, 0 warnings")
}

func TestLint_ReportsDuplicateExactRules(t *testing.T) {
	path := writeFile(t, brokenRules)

	out, err := execute("lint", path)

	require.Error(t, err)
	assert.Contains(t, out, "collide case-insensitively")
	assert.Contains(t, err.Error(), "data-integrity errors found")
}

func TestLint_MissingFile(t *testing.T) {
	_, err := execute("lint", filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open rules file")
}

func TestLint_RequiresOneArg(t *testing.T) {
	_, err := execute("lint")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	store := memory.NewStore()
	store.PutAlias(domain.DomainAlias{SourceDomain: "old.com", TargetDomain: "new.com"})
	store.PutRule(domain.RedirectRule{Domain: "new.com", Path: "/", Target: "https://x.com/home", MatchType: domain.MatchPrefix})
	svc := app.NewServiceForStore(store)

	tests := []struct {
		name   string
		host   string
		target string
		want   []string
		absent string
	}{
		{
			name:   "alias with query",
			host:   "OLD.com:80",
			target: "/page?a=1",
			want:   []string{"status:          301", "resolved_domain: new.com", "location:        https://x.com/home?a=1"},
		},
		{
			name:   "path without leading slash",
			host:   "new.com",
			target: "page",
			want:   []string{"status:          301"},
		},
		{
			name:   "unknown domain",
			host:   "other.com",
			target: "/",
			want:   []string{"status:          404", "resolved_domain: other.com"},
			absent: "location",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&out)

			require.NoError(t, resolve(context.Background(), cmd, svc, tt.host, tt.target))
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
			if tt.absent != "" {
				assert.NotContains(t, out.String(), tt.absent)
			}
		})
	}
}

func TestResolve_InvalidHost(t *testing.T) {
	err := resolve(context.Background(), &cobra.Command{}, app.NewServiceForStore(memory.NewStore()), "bad host", "/")
	assert.ErrorContains(t, err, "invalid host")
}

func TestResolveCommand_FileStore(t *testing.T) {
	t.Setenv("RULE_STORE", "file")
	t.Setenv("RULES_FILE", writeFile(t, cleanRules))

	out, err := execute("resolve", "old.com", "/ABOUT")

	require.NoError(t, err)
	assert.Contains(t, out, "location:        https://x.com/about")
}

func TestVersion(t *testing.T) {
	out, err := execute("version")

	require.NoError(t, err)
	assert.Contains(t, out, "redirector dev")
}
