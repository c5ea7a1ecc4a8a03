package domain

import "fmt"

// MatchType controls how a rule path is compared with the request path.
type MatchType string

const (
	MatchExact  MatchType = "exact"
	MatchPrefix MatchType = "prefix"
)

// ParseMatchType converts a stored string to a MatchType.
func ParseMatchType(s string) (MatchType, error) {
	switch MatchType(s) {
	case MatchExact:
		return MatchExact, nil
	case MatchPrefix:
		return MatchPrefix, nil
	default:
		return "", fmt.Errorf("unknown match type %q", s)
	}
}

type RedirectRule struct {
	Domain    string    `json:"domain"`
	Path      string    `json:"path"`
	Target    string    `json:"target"`
	MatchType MatchType `json:"match_type"`
}
