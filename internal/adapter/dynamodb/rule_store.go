// Package dynamodb implements domain.RuleStore on a single DynamoDB table keyed by
// the string attributes pk (partition) and sk (sort).
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/pscheid92/redirector/internal/domain"
	"github.com/pscheid92/redirector/internal/platform/retry"
)

// API is the subset of the DynamoDB client used by RuleStore.
type API interface {
	dynamodb.QueryAPIClient
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type item struct {
	PK           string `dynamodbav:"pk"`
	SK           string `dynamodbav:"sk"`
	TargetDomain string `dynamodbav:"target_domain,omitempty"`
	Target       string `dynamodbav:"target,omitempty"`
}

type RuleStore struct {
	client API
	table  string
	policy retry.Policy
}

var _ domain.RuleStore = (*RuleStore)(nil)

// New builds a client from the default AWS credential chain. A non-empty endpoint
// overrides the service endpoint, e.g. for DynamoDB Local.
func New(ctx context.Context, table, endpoint string) (*RuleStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		// Retries are handled by RuleStore so they stay within the request deadline.
		o.Retryer = aws.NopRetryer{}
	})

	slog.Info("DynamoDB rule store configured", "table", table, "region", cfg.Region, "endpoint", endpoint)
	return NewRuleStore(client, table), nil
}

func NewRuleStore(client API, table string) *RuleStore {
	policy := retry.DefaultStorePolicy
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Retrying dynamodb lookup", "attempt", attempt, "backoff", backoff, "error", err)
	}
	return &RuleStore{client: client, table: table, policy: policy}
}

func (s *RuleStore) GetAlias(ctx context.Context, d string) (domain.DomainAlias, bool, error) {
	key := domain.AliasKey(d)

	items, err := s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :key AND sk = :key"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return domain.DomainAlias{}, false, domain.StoreUnavailable("dynamodb alias lookup", err)
	}
	if len(items) == 0 {
		return domain.DomainAlias{}, false, nil
	}
	return domain.DomainAlias{SourceDomain: d, TargetDomain: items[0].TargetDomain}, true, nil
}

// GetCandidates reads the whole EXACT partition, since DynamoDB key conditions are
// case-sensitive, and the PREFIX rules sorting at or before path, which include all
// of its prefixes.
func (s *RuleStore) GetCandidates(ctx context.Context, d, path string) ([]domain.RedirectRule, error) {
	exactItems, err := s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: domain.RuleKey(d, domain.MatchExact)},
		},
	})
	if err != nil {
		return nil, domain.StoreUnavailable("dynamodb exact lookup", err)
	}

	prefixItems, err := s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk AND sk <= :path"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":   &types.AttributeValueMemberS{Value: domain.RuleKey(d, domain.MatchPrefix)},
			":path": &types.AttributeValueMemberS{Value: path},
		},
	})
	if err != nil {
		return nil, domain.StoreUnavailable("dynamodb prefix lookup", err)
	}

	var rules []domain.RedirectRule
	for _, it := range exactItems {
		if strings.EqualFold(it.SK, path) {
			rules = append(rules, toRule(d, domain.MatchExact, it))
		}
	}
	for _, it := range prefixItems {
		if strings.HasPrefix(path, it.SK) {
			rules = append(rules, toRule(d, domain.MatchPrefix, it))
		}
	}
	return rules, nil
}

func toRule(d string, matchType domain.MatchType, it item) domain.RedirectRule {
	return domain.RedirectRule{Domain: d, Path: it.SK, Target: it.Target, MatchType: matchType}
}

// query runs input through all result pages under the retry policy.
func (s *RuleStore) query(ctx context.Context, input *dynamodb.QueryInput) ([]item, error) {
	return retry.Do(ctx, s.policy, classify, func(ctx context.Context) ([]item, error) {
		var items []item
		paginator := dynamodb.NewQueryPaginator(s.client, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			var pageItems []item
			if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
				return nil, &unmarshalError{err: err}
			}
			items = append(items, pageItems...)
		}
		return items, nil
	})
}

// Ping checks that the table is reachable with the configured credentials.
func (s *RuleStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err != nil {
		return fmt.Errorf("failed to describe table %s: %w", s.table, err)
	}
	return nil
}

type unmarshalError struct{ err error }

func (e *unmarshalError) Error() string { return "failed to unmarshal items: " + e.err.Error() }
func (e *unmarshalError) Unwrap() error { return e.err }

func classify(err error) retry.Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Stop
	}
	var ue *unmarshalError
	if errors.As(err, &ue) {
		return retry.Stop
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
			return retry.Throttle
		case "InternalServerError", "ServiceUnavailable":
			return retry.Retry
		default:
			return retry.Stop
		}
	}
	return retry.Retry
}
