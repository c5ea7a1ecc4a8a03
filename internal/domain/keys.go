package domain

import "strings"

// Partition key prefixes of the single-table layout shared by all stores.
const (
	aliasKeyPrefix    = "DomainAlias#"
	exactKeyPrefix    = "Redirect#"
	fallbackKeyPrefix = "RedirectFallback#"
)

// AliasKey is both partition and sort key of an alias record.
func AliasKey(domain string) string { return aliasKeyPrefix + domain }

// RuleKey is the partition key holding the rules of the given match type for domain.
func RuleKey(domain string, matchType MatchType) string {
	if matchType == MatchPrefix {
		return fallbackKeyPrefix + domain
	}
	return exactKeyPrefix + domain
}

// ParseRuleKey splits a rule partition key into its domain and match type.
func ParseRuleKey(pk string) (string, MatchType, bool) {
	if d, ok := strings.CutPrefix(pk, fallbackKeyPrefix); ok {
		return d, MatchPrefix, true
	}
	if d, ok := strings.CutPrefix(pk, exactKeyPrefix); ok {
		return d, MatchExact, true
	}
	return "", "", false
}

// ParseAliasKey returns the source domain of an alias key.
func ParseAliasKey(pk string) (string, bool) {
	return strings.CutPrefix(pk, aliasKeyPrefix)
}
