// Command lambda serves the Stripe webhook as an AWS Lambda function.
//
// EVENT_SOURCE selects the event shape: "apigateway" (REST API, default),
// "httpapi" (HTTP API v2) or "url" (function URL).
package main

import (
	"context"
	"fmt"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/mihaimyh/checkoutmail/internal/app"
	"github.com/mihaimyh/checkoutmail/middleware/lambda"
	"github.com/mihaimyh/checkoutmail/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	a, err := app.Build(context.Background(), cfg, app.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}

	switch source := os.Getenv("EVENT_SOURCE"); source {
	case "", "apigateway":
		awslambda.Start(lambda.ProxyHandler(a.Handler))
	case "httpapi":
		awslambda.Start(lambda.HTTPAPIHandler(a.Handler))
	case "url":
		awslambda.Start(lambda.FunctionURLHandler(a.Handler))
	default:
		a.Logger.Fatal().Str("event_source", source).Msg("unknown EVENT_SOURCE")
	}
}
