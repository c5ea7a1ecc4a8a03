package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/redirector/internal/domain"
	"github.com/pscheid92/redirector/internal/platform/retry"
)

const getAliasQuery = `-- name: GetAlias :one
SELECT target_domain
FROM redirect_items
WHERE pk = $1 AND sk = $1`

// Exact rules are narrowed to paths of equal rune count, which every
// case-insensitive match has; the resolver applies the precise comparison.
// Prefix rules are narrowed to real prefixes of the request path.
const getCandidatesQuery = `-- name: GetCandidates :many
SELECT pk, sk, target
FROM redirect_items
WHERE (pk = $1 AND char_length(sk) = char_length($3))
   OR (pk = $2 AND starts_with($3, sk))
ORDER BY seq`

type RuleStore struct {
	pool   *pgxpool.Pool
	policy retry.Policy
}

var _ domain.RuleStore = (*RuleStore)(nil)

func NewRuleStore(pool *pgxpool.Pool) *RuleStore {
	policy := retry.DefaultStorePolicy
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Retrying postgres lookup", "attempt", attempt, "backoff", backoff, "error", err)
	}
	return &RuleStore{pool: pool, policy: policy}
}

func (s *RuleStore) GetAlias(ctx context.Context, d string) (domain.DomainAlias, bool, error) {
	key := domain.AliasKey(d)

	target, err := retry.Do(ctx, s.policy, classify, func(ctx context.Context) (*string, error) {
		var target *string
		err := s.pool.QueryRow(ctx, getAliasQuery, key).Scan(&target)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if target == nil {
			// Row exists without a target; report it as present but empty.
			empty := ""
			return &empty, nil
		}
		return target, nil
	})
	if err != nil {
		return domain.DomainAlias{}, false, domain.StoreUnavailable("postgres alias lookup", err)
	}
	if target == nil {
		return domain.DomainAlias{}, false, nil
	}
	return domain.DomainAlias{SourceDomain: d, TargetDomain: *target}, true, nil
}

func (s *RuleStore) GetCandidates(ctx context.Context, d, path string) ([]domain.RedirectRule, error) {
	exactKey := domain.RuleKey(d, domain.MatchExact)
	prefixKey := domain.RuleKey(d, domain.MatchPrefix)

	rules, err := retry.Do(ctx, s.policy, classify, func(ctx context.Context) ([]domain.RedirectRule, error) {
		rows, err := s.pool.Query(ctx, getCandidatesQuery, exactKey, prefixKey, path)
		if err != nil {
			return nil, err
		}
		return pgx.CollectRows(rows, scanRule)
	})
	if err != nil {
		return nil, domain.StoreUnavailable("postgres candidate lookup", err)
	}
	return rules, nil
}

func scanRule(row pgx.CollectableRow) (domain.RedirectRule, error) {
	var (
		pk, sk string
		target *string
	)
	if err := row.Scan(&pk, &sk, &target); err != nil {
		return domain.RedirectRule{}, fmt.Errorf("failed to scan redirect rule: %w", err)
	}

	ruleDomain, matchType, ok := domain.ParseRuleKey(pk)
	if !ok {
		return domain.RedirectRule{}, fmt.Errorf("unexpected partition key %q", pk)
	}

	rule := domain.RedirectRule{Domain: ruleDomain, Path: sk, MatchType: matchType}
	if target != nil {
		rule.Target = *target
	}
	return rule, nil
}

func (s *RuleStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// classify decides whether a failed query is worth repeating. Cancellation and
// SQL errors are permanent; connection failures and resource exhaustion are not.
func classify(err error) retry.Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Stop
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) == 5 {
		switch pgErr.Code[:2] {
		case "08", "40", "57":
			return retry.Retry
		case "53":
			return retry.Throttle
		default:
			return retry.Stop
		}
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return retry.Retry
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return retry.Retry
	}
	return retry.Stop
}
