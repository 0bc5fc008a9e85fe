package store

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

func TestClassify_Nil(t *testing.T) {
	if err := classify(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestClassify_ContextPassesThrough(t *testing.T) {
	if err := classify(context.Canceled); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if err := classify(context.DeadlineExceeded); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestClassify_TransportFailureIsUnavailable(t *testing.T) {
	err := classify(&net.OpError{Op: "dial", Err: errors.New("connection refused")})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for transport failure, got %v", err)
	}
}

func TestClassify_APIErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			"throttling is transient",
			&types.ProvisionedThroughputExceededException{},
			ErrUnavailable,
		},
		{
			"internal server error is transient",
			&types.InternalServerError{},
			ErrUnavailable,
		},
		{
			"server fault is transient",
			&smithy.GenericAPIError{Code: "ServiceUnavailable", Fault: smithy.FaultServer},
			ErrUnavailable,
		},
		{
			"validation failure is rejected",
			&smithy.GenericAPIError{Code: "ValidationException", Fault: smithy.FaultClient},
			ErrRejected,
		},
		{
			"resource not found is rejected",
			&smithy.GenericAPIError{Code: "ResourceNotFoundException", Fault: smithy.FaultClient},
			ErrRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestItemKey(t *testing.T) {
	item := KeyAttrs("order:O1", "taco:T1")
	k, err := itemKey(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.PK != "order:O1" || k.SK != "taco:T1" {
		t.Errorf("unexpected key: %+v", k)
	}

	_, err = itemKey(Item{"PK": &types.AttributeValueMemberN{Value: "1"}})
	if err == nil {
		t.Error("expected error for non-string key attributes")
	}
}
