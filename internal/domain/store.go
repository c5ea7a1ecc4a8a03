package domain

import "context"

// RuleStore is the read-only lookup capability the resolvers depend on.
//
// Implementations wrap infrastructure failures with ErrStoreUnavailable and return
// records as stored; validation happens in the resolvers.
type RuleStore interface {
	// GetAlias returns the alias record keyed by domain, or false when none exists.
	GetAlias(ctx context.Context, domain string) (DomainAlias, bool, error)

	// GetCandidates returns the rules of domain that may match path. Implementations
	// narrow the set server-side where they can and may return extra rules; results
	// are in a deterministic store order.
	GetCandidates(ctx context.Context, domain, path string) ([]RedirectRule, error)
}
