package dynamock

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Call is the shape of a single DynamoDB API operation.
type Call[T, U any] func(context.Context, *T, ...func(*dynamodb.Options)) (*U, error)

// MockClient is a simple function-field mock for DynamoDB operations. Each
// operation defaults to failing the test when invoked unexpectedly.
type MockClient struct {
	GetFunc      Call[dynamodb.GetItemInput, dynamodb.GetItemOutput]
	PutFunc      Call[dynamodb.PutItemInput, dynamodb.PutItemOutput]
	UpdateFunc   Call[dynamodb.UpdateItemInput, dynamodb.UpdateItemOutput]
	QueryFunc    Call[dynamodb.QueryInput, dynamodb.QueryOutput]
	BatchGetFunc Call[dynamodb.BatchGetItemInput, dynamodb.BatchGetItemOutput]
}

// NewMockClient creates a mock whose operations all fail the test until an
// expectation is installed.
func NewMockClient(t *testing.T) *MockClient {
	return &MockClient{
		GetFunc:      defaultFunc[dynamodb.GetItemInput, dynamodb.GetItemOutput](t),
		PutFunc:      defaultFunc[dynamodb.PutItemInput, dynamodb.PutItemOutput](t),
		UpdateFunc:   defaultFunc[dynamodb.UpdateItemInput, dynamodb.UpdateItemOutput](t),
		QueryFunc:    defaultFunc[dynamodb.QueryInput, dynamodb.QueryOutput](t),
		BatchGetFunc: defaultFunc[dynamodb.BatchGetItemInput, dynamodb.BatchGetItemOutput](t),
	}
}

func defaultFunc[T, U any](t *testing.T) Call[T, U] {
	return func(ctx context.Context, params *T, optFns ...func(*dynamodb.Options)) (*U, error) {
		t.Helper()
		t.Fatal("unexpected call")
		return nil, nil
	}
}

func (m *MockClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return m.GetFunc(ctx, params, optFns...)
}

func (m *MockClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return m.PutFunc(ctx, params, optFns...)
}

func (m *MockClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return m.UpdateFunc(ctx, params, optFns...)
}

func (m *MockClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return m.QueryFunc(ctx, params, optFns...)
}

func (m *MockClient) BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	return m.BatchGetFunc(ctx, params, optFns...)
}
