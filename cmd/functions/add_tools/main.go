package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"toolshelf/internal/functions"
)

func main() {
	handlers, err := functions.Bootstrap(context.Background())
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	lambda.Start(handlers.AddTools)
}
