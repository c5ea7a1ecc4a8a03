package redirect

import (
	"strings"

	"github.com/pscheid92/redirector/internal/domain"
)

// selectRule applies the matching policy to candidates. Candidates that do not
// match path are ignored, so stores may over-fetch.
//
// PREFIX ties (equal path length) go to the first candidate in slice order.
func selectRule(candidates []domain.RedirectRule, ruleDomain, path string) (domain.RedirectRule, bool, error) {
	var (
		exact   []domain.RedirectRule
		best    domain.RedirectRule
		hasBest bool
	)

	for _, rule := range candidates {
		switch rule.MatchType {
		case domain.MatchExact:
			if strings.EqualFold(rule.Path, path) {
				exact = append(exact, rule)
			}
		case domain.MatchPrefix:
			if !strings.HasPrefix(path, rule.Path) {
				continue
			}
			if !hasBest || len(rule.Path) > len(best.Path) {
				best, hasBest = rule, true
			}
		}
	}

	switch len(exact) {
	case 0:
	case 1:
		return exact[0], true, nil
	default:
		targets := make([]string, len(exact))
		for i, r := range exact {
			targets[i] = r.Target
		}
		return domain.RedirectRule{}, false, &domain.ConflictError{Domain: ruleDomain, Path: path, Targets: targets}
	}

	return best, hasBest, nil
}
