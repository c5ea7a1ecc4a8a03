package redirect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pscheid92/redirector/internal/domain"
)

// Severity grades an audit finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a problem detected in a rule set without serving traffic.
type Finding struct {
	Severity Severity
	Key      string
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Key, f.Message)
}

// Audit inspects a complete rule set for records that would fail or misbehave at
// resolution time. Errors correspond to requests that would be answered with 500;
// warnings flag data that resolves but is probably unintended.
func Audit(aliases []domain.DomainAlias, rules []domain.RedirectRule) []Finding {
	var findings []Finding

	targets := make(map[string]string, len(aliases))
	for _, a := range aliases {
		targets[a.SourceDomain] = a.TargetDomain
	}

	for _, a := range aliases {
		key := domain.AliasKey(a.SourceDomain)
		switch {
		case a.TargetDomain == "":
			findings = append(findings, Finding{SeverityError, key, "missing target_domain"})
		case a.TargetDomain == a.SourceDomain:
			findings = append(findings, Finding{SeverityWarning, key, "alias points to itself"})
		default:
			// Aliases are resolved once; rules of a chained target are never consulted.
			if next, ok := targets[a.TargetDomain]; ok && next != "" {
				findings = append(findings, Finding{SeverityWarning, key,
					fmt.Sprintf("target %s is itself an alias for %s", a.TargetDomain, next)})
			}
		}
	}

	exactByPath := make(map[string][]domain.RedirectRule)
	var exactKeys []string

	for _, r := range rules {
		key := domain.RuleKey(r.Domain, r.MatchType) + " " + r.Path
		if r.Target == "" {
			findings = append(findings, Finding{SeverityError, key, "missing target"})
		}
		if _, aliased := targets[r.Domain]; aliased {
			findings = append(findings, Finding{SeverityWarning, key,
				fmt.Sprintf("domain %s is an alias, rule is unreachable", r.Domain)})
		}
		if r.MatchType == domain.MatchPrefix && !strings.HasPrefix(r.Path, "/") {
			findings = append(findings, Finding{SeverityWarning, key, "prefix path does not start with '/'"})
		}

		if r.MatchType == domain.MatchExact {
			k := r.Domain + "\x00" + strings.ToLower(r.Path)
			if _, seen := exactByPath[k]; !seen {
				exactKeys = append(exactKeys, k)
			}
			exactByPath[k] = append(exactByPath[k], r)
		}
	}

	for _, k := range exactKeys {
		group := exactByPath[k]
		if len(group) < 2 {
			continue
		}
		paths := make([]string, len(group))
		for i, r := range group {
			paths[i] = r.Path
		}
		findings = append(findings, Finding{SeverityError, domain.RuleKey(group[0].Domain, domain.MatchExact),
			fmt.Sprintf("%d exact rules collide case-insensitively: %s", len(group), strings.Join(paths, ", "))})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity == SeverityError && findings[j].Severity != SeverityError
	})
	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
