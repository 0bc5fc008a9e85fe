package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

const (
	// AttrPK and AttrSK are the attribute names of the composite primary key.
	AttrPK = "PK"
	AttrSK = "SK"

	// MaxBatchKeys is the maximum number of keys in one physical batch-get
	// call. Larger requests are split and their results merged.
	MaxBatchKeys = 100
)

// Item is an alias for the raw DynamoDB attribute value map.
type Item = map[string]types.AttributeValue

// Key is the composite address of one item.
type Key struct {
	PK string
	SK string
}

// DynamoDBAPI is the subset of the DynamoDB client the store requires.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
}

// Store provides typed access to the single entity table. It is safe for
// concurrent use across overlapping invocations.
type Store struct {
	client DynamoDBAPI
	config Config
}

// New creates a new Store instance.
func New(client DynamoDBAPI, config Config) (*Store, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Store{client: client, config: config}, nil
}

// KeyAttrs builds the primary key attribute map for a key pair.
func KeyAttrs(pk, sk string) Item {
	return Item{
		AttrPK: &types.AttributeValueMemberS{Value: pk},
		AttrSK: &types.AttributeValueMemberS{Value: sk},
	}
}

// Get retrieves the item at (pk, sk), returning ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, pk, sk string) (Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       KeyAttrs(pk, sk),
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	return out.Item, nil
}

// Put writes item unconditionally, silently overwriting any item at the same
// key. Callers that need create-only semantics use PutIfAbsent.
func (s *Store) Put(ctx context.Context, item Item) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.TableName),
		Item:      item,
	})
	return classify(err)
}

// PutIfAbsent writes item only if no item exists at its key, returning
// ErrAlreadyExists otherwise. This is the one genuine compare-and-set the
// store offers; the existing item is left untouched on conflict.
func (s *Store) PutIfAbsent(ctx context.Context, item Item) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.TableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrAlreadyExists
	}
	return classify(err)
}

// UpdateField sets a single attribute on the item at (pk, sk). The existence
// precondition is enforced at the store, not via a prior read, so the check
// cannot race a concurrent delete. Returns ErrNotFound if the key is absent.
func (s *Store) UpdateField(ctx context.Context, pk, sk, field string, value types.AttributeValue) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.TableName),
		Key:                       KeyAttrs(pk, sk),
		UpdateExpression:          aws.String("SET #f = :v"),
		ConditionExpression:       aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
		ExpressionAttributeNames:  map[string]string{"#f": field},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": value},
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrNotFound
	}
	return classify(err)
}

// QueryPrefix returns every item in the pk partition whose sort key begins
// with skPrefix, in sort key ascending order. An empty prefix returns the
// whole item collection.
func (s *Store) QueryPrefix(ctx context.Context, pk, skPrefix string) ([]Item, error) {
	keyCondition := expression.Key(AttrPK).Equal(expression.Value(pk))
	if skPrefix != "" {
		keyCondition = keyCondition.And(expression.Key(AttrSK).BeginsWith(skPrefix))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var items []Item
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err)
		}
		for _, raw := range page.Items {
			items = append(items, raw)
		}
	}

	return items, nil
}

// BatchGet retrieves the items at the given keys, issuing one physical call
// per MaxBatchKeys chunk and merging the responses. Keys with no stored item
// are simply absent from the result; unprocessed keys reported by the store
// are folded back into the pending set.
func (s *Store) BatchGet(ctx context.Context, keys []Key) (map[Key]Item, error) {
	result := make(map[Key]Item, len(keys))

	pending := make([]Item, 0, len(keys))
	for _, k := range keys {
		pending = append(pending, KeyAttrs(k.PK, k.SK))
	}

	for len(pending) > 0 {
		n := len(pending)
		if n > MaxBatchKeys {
			n = MaxBatchKeys
		}
		chunk := pending[:n]
		pending = pending[n:]

		out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				s.config.TableName: {Keys: chunk},
			},
		})
		if err != nil {
			return nil, classify(err)
		}

		for _, item := range out.Responses[s.config.TableName] {
			k, err := itemKey(item)
			if err != nil {
				return nil, err
			}
			result[k] = item
		}

		if unprocessed, ok := out.UnprocessedKeys[s.config.TableName]; ok {
			pending = append(pending, unprocessed.Keys...)
		}
	}

	return result, nil
}

// itemKey extracts the composite key from a stored item.
func itemKey(item Item) (Key, error) {
	pk, pkOK := item[AttrPK].(*types.AttributeValueMemberS)
	sk, skOK := item[AttrSK].(*types.AttributeValueMemberS)
	if !pkOK || !skOK {
		return Key{}, errors.New("tacostore: item missing string key attributes")
	}
	return Key{PK: pk.Value, SK: sk.Value}, nil
}

// retryableCodes are client-fault API errors that are nonetheless transient.
var retryableCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"RequestLimitExceeded":                   true,
	"ThrottlingException":                    true,
	"TransactionConflictException":           true,
	"LimitExceededException":                 true,
}

// classify maps a raw client error onto the store error taxonomy. Transient
// faults wrap ErrUnavailable, malformed requests wrap ErrRejected, and
// context cancellation passes through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		// Transport-level failure before a service response.
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if retryableCodes[apiErr.ErrorCode()] || apiErr.ErrorFault() == smithy.FaultServer {
		return fmt.Errorf("%w: %s", ErrUnavailable, apiErr.ErrorCode())
	}
	return fmt.Errorf("%w: %s: %s", ErrRejected, apiErr.ErrorCode(), apiErr.ErrorMessage())
}
