// Package redirect implements alias and redirect rule resolution.
//
// AliasResolver maps a request domain onto its canonical domain. Resolver picks the
// redirect target for a (domain, path) pair: an EXACT rule (case-insensitive path
// equality) always wins, otherwise the longest PREFIX rule whose path is a strict
// string prefix of the request path. Both are stateless and safe for concurrent use.
package redirect
