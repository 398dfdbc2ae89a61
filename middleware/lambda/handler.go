// Package lambda adapts the webhook handler to AWS Lambda behind API Gateway
// (REST and HTTP APIs) or a Lambda function URL.
package lambda

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

var responseHeaders = map[string]string{
	"Content-Type":           "text/plain; charset=utf-8",
	"Cache-Control":          "no-store",
	"X-Content-Type-Options": "nosniff",
}

// ProxyHandler handles API Gateway REST API (payload format 1.0) events.
func ProxyHandler(p notifier.Processor) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		resp := handle(ctx, p, event.HTTPMethod, event.Headers, event.Body, event.IsBase64Encoded,
			event.RequestContext.RequestID, event.RequestContext.Identity.SourceIP)
		return events.APIGatewayProxyResponse{
			StatusCode: resp.StatusCode,
			Headers:    copyHeaders(),
			Body:       resp.Body,
		}, nil
	}
}

// HTTPAPIHandler handles API Gateway HTTP API (payload format 2.0) events.
func HTTPAPIHandler(p notifier.Processor) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		resp := handle(ctx, p, event.RequestContext.HTTP.Method, event.Headers, event.Body, event.IsBase64Encoded,
			event.RequestContext.RequestID, event.RequestContext.HTTP.SourceIP)
		return events.APIGatewayV2HTTPResponse{
			StatusCode: resp.StatusCode,
			Headers:    copyHeaders(),
			Body:       resp.Body,
		}, nil
	}
}

// FunctionURLHandler handles Lambda function URL events.
func FunctionURLHandler(p notifier.Processor) func(context.Context, events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	return func(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
		resp := handle(ctx, p, event.RequestContext.HTTP.Method, event.Headers, event.Body, event.IsBase64Encoded,
			event.RequestContext.RequestID, event.RequestContext.HTTP.SourceIP)
		return events.LambdaFunctionURLResponse{
			StatusCode: resp.StatusCode,
			Headers:    copyHeaders(),
			Body:       resp.Body,
		}, nil
	}
}

// handle never returns an error to the runtime: every outcome is an HTTP response.
// Bodies of non-POST requests are never decoded.
func handle(ctx context.Context, p notifier.Processor, method string, headers map[string]string,
	body string, isBase64 bool, requestID, sourceIP string,
) notifier.Response {
	if requestID == "" {
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			requestID = lc.AwsRequestID
		}
	}

	req := notifier.Request{
		Method:    method,
		Headers:   headers,
		RequestID: requestID,
		ClientIP:  sourceIP,
	}
	if method == http.MethodPost {
		req.Body = []byte(body)
		if isBase64 {
			decoded, err := base64.StdEncoding.DecodeString(body)
			if err != nil {
				req.Body, req.BodyErr = nil, fmt.Errorf("%w: invalid base64 body", notifier.ErrInvalidPayload)
			} else {
				req.Body = decoded
			}
		}
	}

	return p.Handle(ctx, req)
}

func copyHeaders() map[string]string {
	h := make(map[string]string, len(responseHeaders))
	for k, v := range responseHeaders {
		h[k] = v
	}
	return h
}
