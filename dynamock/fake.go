package dynamock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

type item = map[string]types.AttributeValue

// Fake is an in-memory stand-in for DynamoDB. It is safe for concurrent use.
type Fake struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]item // table -> pk -> sk -> item

	calls       map[string]int
	totalCalls  int
	failAt      int
	failErr     error
	unprocessed int
}

// NewFake creates an empty in-memory table set.
func NewFake() *Fake {
	return &Fake{
		tables: make(map[string]map[string]map[string]item),
		calls:  make(map[string]int),
	}
}

// FailOnCall arranges for the nth API call from now (1-based) to fail with
// err. Used to exercise partial-write and classification paths.
func (f *Fake) FailOnCall(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAt = f.totalCalls + n
	f.failErr = err
}

// LeaveUnprocessed makes the next BatchGetItem call report its last n keys
// as unprocessed instead of resolving them.
func (f *Fake) LeaveUnprocessed(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unprocessed = n
}

// CallCount reports how many times the named operation has been invoked.
func (f *Fake) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// intercept records the call and returns an injected failure if one is due.
// Callers must hold the mutex.
func (f *Fake) intercept(op string) error {
	f.calls[op]++
	f.totalCalls++
	if f.failAt == f.totalCalls && f.failErr != nil {
		err := f.failErr
		f.failErr = nil
		f.failAt = 0
		return err
	}
	return nil
}

func (f *Fake) partition(table, pk string) map[string]item {
	t, ok := f.tables[table]
	if !ok {
		t = make(map[string]map[string]item)
		f.tables[table] = t
	}
	p, ok := t[pk]
	if !ok {
		p = make(map[string]item)
		t[pk] = p
	}
	return p
}

func copyItem(in item) item {
	out := make(item, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func stringKey(key item, attr string) (string, error) {
	v, ok := key[attr].(*types.AttributeValueMemberS)
	if !ok {
		return "", validationError("key attribute %s must be a string", attr)
	}
	return v.Value, nil
}

func validationError(format string, args ...any) error {
	return &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: fmt.Sprintf(format, args...),
		Fault:   smithy.FaultClient,
	}
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{
		Message: aws.String("The conditional request failed"),
	}
}

func (f *Fake) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.intercept("GetItem"); err != nil {
		return nil, err
	}

	pk, err := stringKey(params.Key, "PK")
	if err != nil {
		return nil, err
	}
	sk, err := stringKey(params.Key, "SK")
	if err != nil {
		return nil, err
	}

	stored, ok := f.partition(*params.TableName, pk)[sk]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(stored)}, nil
}

func (f *Fake) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.intercept("PutItem"); err != nil {
		return nil, err
	}

	pk, err := stringKey(params.Item, "PK")
	if err != nil {
		return nil, err
	}
	sk, err := stringKey(params.Item, "SK")
	if err != nil {
		return nil, err
	}

	part := f.partition(*params.TableName, pk)
	if params.ConditionExpression != nil {
		if !strings.Contains(*params.ConditionExpression, "attribute_not_exists") {
			return nil, validationError("unsupported put condition: %s", *params.ConditionExpression)
		}
		if _, exists := part[sk]; exists {
			return nil, conditionFailed()
		}
	}
	part[sk] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *Fake) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.intercept("UpdateItem"); err != nil {
		return nil, err
	}

	pk, err := stringKey(params.Key, "PK")
	if err != nil {
		return nil, err
	}
	sk, err := stringKey(params.Key, "SK")
	if err != nil {
		return nil, err
	}

	part := f.partition(*params.TableName, pk)
	stored, exists := part[sk]
	if params.ConditionExpression != nil && strings.Contains(*params.ConditionExpression, "attribute_exists") && !exists {
		return nil, conditionFailed()
	}
	if !exists {
		stored = item{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		}
	}

	// Only the single-assignment form the store emits is supported.
	expr := aws.ToString(params.UpdateExpression)
	assignment, ok := strings.CutPrefix(expr, "SET ")
	if !ok || strings.Contains(assignment, ",") {
		return nil, validationError("unsupported update expression: %s", expr)
	}
	lhs, rhs, ok := strings.Cut(assignment, "=")
	if !ok {
		return nil, validationError("unsupported update expression: %s", expr)
	}

	field := resolveName(strings.TrimSpace(lhs), params.ExpressionAttributeNames)
	value, ok := params.ExpressionAttributeValues[strings.TrimSpace(rhs)]
	if !ok {
		return nil, validationError("unbound value in update expression: %s", expr)
	}

	updated := copyItem(stored)
	updated[field] = value
	part[sk] = updated
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *Fake) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.intercept("Query"); err != nil {
		return nil, err
	}

	pk, skPrefix, err := parseKeyCondition(params)
	if err != nil {
		return nil, err
	}

	part := f.partition(*params.TableName, pk)
	sks := make([]string, 0, len(part))
	for sk := range part {
		if strings.HasPrefix(sk, skPrefix) {
			sks = append(sks, sk)
		}
	}
	sort.Strings(sks)
	if params.ScanIndexForward != nil && !*params.ScanIndexForward {
		for i, j := 0, len(sks)-1; i < j; i, j = i+1, j-1 {
			sks[i], sks[j] = sks[j], sks[i]
		}
	}

	out := &dynamodb.QueryOutput{Count: int32(len(sks))}
	for _, sk := range sks {
		out.Items = append(out.Items, copyItem(part[sk]))
	}
	return out, nil
}

func (f *Fake) BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.intercept("BatchGetItem"); err != nil {
		return nil, err
	}

	total := 0
	for _, ka := range params.RequestItems {
		total += len(ka.Keys)
	}
	if total > 100 {
		return nil, validationError("too many items requested for the BatchGetItem call: %d", total)
	}

	out := &dynamodb.BatchGetItemOutput{
		Responses:       make(map[string][]item),
		UnprocessedKeys: make(map[string]types.KeysAndAttributes),
	}
	skip := f.unprocessed
	f.unprocessed = 0

	for table, ka := range params.RequestItems {
		keys := ka.Keys
		if skip > 0 && skip < len(keys) {
			out.UnprocessedKeys[table] = types.KeysAndAttributes{Keys: keys[len(keys)-skip:]}
			keys = keys[:len(keys)-skip]
			skip = 0
		}
		for _, key := range keys {
			pk, err := stringKey(key, "PK")
			if err != nil {
				return nil, err
			}
			sk, err := stringKey(key, "SK")
			if err != nil {
				return nil, err
			}
			if stored, ok := f.partition(table, pk)[sk]; ok {
				out.Responses[table] = append(out.Responses[table], copyItem(stored))
			}
		}
	}
	if len(out.UnprocessedKeys) == 0 {
		out.UnprocessedKeys = nil
	}
	return out, nil
}

// parseKeyCondition extracts the partition key value and optional sort key
// prefix from the two key condition shapes the store emits:
//
//	#0 = :0
//	#0 = :0 AND begins_with (#1, :1)
func parseKeyCondition(params *dynamodb.QueryInput) (pk, skPrefix string, err error) {
	expr := aws.ToString(params.KeyConditionExpression)
	var havePK bool

	for _, clause := range strings.Split(expr, " AND ") {
		clause = strings.TrimSpace(clause)

		if rest, ok := strings.CutPrefix(clause, "begins_with"); ok {
			rest = strings.Trim(strings.TrimSpace(rest), "()")
			namePart, valuePart, ok := strings.Cut(rest, ",")
			if !ok {
				return "", "", validationError("unsupported key condition: %s", expr)
			}
			if attr := resolveName(strings.TrimSpace(namePart), params.ExpressionAttributeNames); attr != "SK" {
				return "", "", validationError("begins_with on unexpected attribute %s", attr)
			}
			skPrefix, err = boundString(params, strings.TrimSpace(valuePart))
			if err != nil {
				return "", "", err
			}
			continue
		}

		namePart, valuePart, ok := strings.Cut(clause, "=")
		if !ok {
			return "", "", validationError("unsupported key condition: %s", expr)
		}
		if attr := resolveName(strings.TrimSpace(namePart), params.ExpressionAttributeNames); attr != "PK" {
			return "", "", validationError("equality on unexpected attribute %s", attr)
		}
		pk, err = boundString(params, strings.TrimSpace(valuePart))
		if err != nil {
			return "", "", err
		}
		havePK = true
	}

	if !havePK {
		return "", "", validationError("key condition missing partition key: %s", expr)
	}
	return pk, skPrefix, nil
}

func resolveName(name string, names map[string]string) string {
	if resolved, ok := names[name]; ok {
		return resolved
	}
	return name
}

func boundString(params *dynamodb.QueryInput, placeholder string) (string, error) {
	v, ok := params.ExpressionAttributeValues[placeholder].(*types.AttributeValueMemberS)
	if !ok {
		return "", validationError("unbound string value %s", placeholder)
	}
	return v.Value, nil
}
