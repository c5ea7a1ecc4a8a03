package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pscheid92/redirector/internal/domain"
	"github.com/pscheid92/redirector/internal/redirect"
)

type aliasResolver interface {
	EffectiveDomain(ctx context.Context, requestDomain string) (string, error)
}

type redirectResolver interface {
	Resolve(ctx context.Context, ruleDomain, path string) (string, bool, error)
}

// Resolution is the transport-independent outcome of a redirect request.
type Resolution struct {
	Status         int
	ResolvedDomain string
	Location       string
}

// Found reports whether the resolution carries a redirect target.
func (r Resolution) Found() bool {
	return r.Status == http.StatusMovedPermanently
}

type Service struct {
	aliases   aliasResolver
	redirects redirectResolver
}

func NewService(aliases aliasResolver, redirects redirectResolver) *Service {
	return &Service{aliases: aliases, redirects: redirects}
}

// NewServiceForStore wires both resolvers against one rule store.
func NewServiceForStore(store domain.RuleStore) *Service {
	return NewService(redirect.NewAliasResolver(store), redirect.NewResolver(store))
}

// Handle resolves requestDomain and path to a redirect. Store and data-integrity
// failures are returned as errors; a missing rule is a 404 Resolution.
func (s *Service) Handle(ctx context.Context, requestDomain, path string, query url.Values) (Resolution, error) {
	effective, err := s.aliases.EffectiveDomain(ctx, requestDomain)
	if err != nil {
		return Resolution{}, err
	}
	if effective != requestDomain {
		slog.DebugContext(ctx, "Domain alias applied", "domain", requestDomain, "resolved_domain", effective)
	}

	target, found, err := s.redirects.Resolve(ctx, effective, path)
	if err != nil {
		return Resolution{}, err
	}
	if !found {
		return Resolution{Status: http.StatusNotFound, ResolvedDomain: effective}, nil
	}

	return Resolution{
		Status:         http.StatusMovedPermanently,
		ResolvedDomain: effective,
		Location:       appendQuery(target, query),
	}, nil
}

// appendQuery adds the encoded request query to target. A target that already has
// a query string is extended with '&'.
func appendQuery(target string, query url.Values) string {
	if len(query) == 0 {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + query.Encode()
}
