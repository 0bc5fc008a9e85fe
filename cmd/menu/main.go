package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/calzona/tacostore/internal/bootstrap"
)

func main() {
	h := bootstrap.MustHandler(context.Background())
	lambda.Start(h.Menu)
}
