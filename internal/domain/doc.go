// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (alias.go, rule.go, keys.go, errors.go, store.go)
// with shared types and the storage contract consumed by the resolvers. No implementation
// code beyond small value helpers - just contracts. Adapters live under internal/adapter.
package domain
