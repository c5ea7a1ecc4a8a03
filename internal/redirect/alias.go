package redirect

import (
	"context"

	"github.com/pscheid92/redirector/internal/domain"
)

type AliasResolver struct {
	store domain.RuleStore
}

func NewAliasResolver(store domain.RuleStore) *AliasResolver {
	return &AliasResolver{store: store}
}

// ResolveAlias looks up the alias record for requestDomain. A missing alias is
// reported as (zero, false, nil).
func (r *AliasResolver) ResolveAlias(ctx context.Context, requestDomain string) (domain.DomainAlias, bool, error) {
	alias, ok, err := r.store.GetAlias(ctx, requestDomain)
	if err != nil {
		return domain.DomainAlias{}, false, domain.StoreUnavailable("alias lookup", err)
	}
	if !ok {
		return domain.DomainAlias{}, false, nil
	}

	if alias.TargetDomain == "" {
		return domain.DomainAlias{}, false, &domain.DataIntegrityError{
			Key:    domain.AliasKey(requestDomain),
			Reason: "missing target_domain",
		}
	}
	if alias.SourceDomain == "" {
		alias.SourceDomain = requestDomain
	}
	return alias, true, nil
}

// EffectiveDomain returns the alias target for requestDomain, or requestDomain itself.
func (r *AliasResolver) EffectiveDomain(ctx context.Context, requestDomain string) (string, error) {
	alias, ok, err := r.ResolveAlias(ctx, requestDomain)
	if err != nil {
		return "", err
	}
	if !ok {
		return requestDomain, nil
	}
	return alias.TargetDomain, nil
}
