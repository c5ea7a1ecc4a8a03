package redirect

import (
	"context"
	"fmt"

	"github.com/pscheid92/redirector/internal/domain"
)

type Resolver struct {
	store domain.RuleStore
}

func NewResolver(store domain.RuleStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the redirect target for path on ruleDomain. found is false when
// no rule matches; that is not an error.
func (r *Resolver) Resolve(ctx context.Context, ruleDomain, path string) (target string, found bool, err error) {
	candidates, err := r.store.GetCandidates(ctx, ruleDomain, path)
	if err != nil {
		return "", false, domain.StoreUnavailable("candidate lookup", err)
	}

	rule, ok, err := selectRule(candidates, ruleDomain, path)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve %s%s: %w", ruleDomain, path, err)
	}
	if !ok {
		return "", false, nil
	}
	if rule.Target == "" {
		return "", false, &domain.DataIntegrityError{
			Key:    domain.RuleKey(ruleDomain, rule.MatchType) + " " + rule.Path,
			Reason: "missing target",
		}
	}
	return rule.Target, true, nil
}
