package lambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/pkg/errors"
)

// TranslateRequest converts an API Gateway proxy event into an *http.Request.
// Method, path, query, headers and body are carried over unchanged; a body
// flagged as base64 is decoded to its raw bytes.
func TranslateRequest(ctx context.Context, event events.APIGatewayProxyRequest) (*http.Request, error) {
	body, err := decodeBody(event)
	if err != nil {
		return nil, err
	}
	return newRequest(ctx, event, body)
}

// TranslateResponse converts a captured response into the proxy result.
// Status and headers pass through; the body is base64 encoded only when it
// is binary.
func TranslateResponse(resp *Response) events.APIGatewayProxyResponse {
	out := events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string, len(resp.Header)),
	}

	for key, values := range resp.Header {
		switch len(values) {
		case 0:
		case 1:
			out.Headers[key] = values[0]
		default:
			if out.MultiValueHeaders == nil {
				out.MultiValueHeaders = make(map[string][]string)
			}
			out.MultiValueHeaders[key] = append([]string(nil), values...)
		}
	}

	if isBinary(resp.Header, resp.Body) {
		out.Body = base64.StdEncoding.EncodeToString(resp.Body)
		out.IsBase64Encoded = true
	} else {
		out.Body = string(resp.Body)
	}

	return out
}

func decodeBody(event events.APIGatewayProxyRequest) ([]byte, error) {
	if !event.IsBase64Encoded {
		return []byte(event.Body), nil
	}

	body, err := base64.StdEncoding.DecodeString(event.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decode request body for %s %s", event.HTTPMethod, event.Path)
	}
	return body, nil
}

func newRequest(ctx context.Context, event events.APIGatewayProxyRequest, body []byte) (*http.Request, error) {
	method := event.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}

	path := event.Path
	if path == "" {
		path = "/"
	}

	target := &url.URL{Path: path, RawQuery: rawQuery(event)}

	req, err := http.NewRequestWithContext(withPlatformInvocation(ctx), method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to build request for %s %s", method, path)
	}

	req.RequestURI = target.RequestURI()
	req.Header = requestHeaders(event)
	req.Host = req.Header.Get("Host")

	if ip := event.RequestContext.Identity.SourceIP; ip != "" {
		req.RemoteAddr = net.JoinHostPort(ip, "0")
	}

	return req, nil
}

// requestHeaders merges the multi-value and single-value header maps. Keys
// differing only in case collapse into one canonical key.
func requestHeaders(event events.APIGatewayProxyRequest) http.Header {
	header := make(http.Header, len(event.Headers))
	fromMulti := make(map[string]bool, len(event.MultiValueHeaders))

	for key, values := range event.MultiValueHeaders {
		for _, value := range values {
			header.Add(key, value)
		}
		fromMulti[http.CanonicalHeaderKey(key)] = true
	}

	for key, value := range event.Headers {
		if fromMulti[http.CanonicalHeaderKey(key)] {
			continue
		}
		header.Add(key, value)
	}

	return header
}

func rawQuery(event events.APIGatewayProxyRequest) string {
	values := url.Values{}

	for key, items := range event.MultiValueQueryStringParameters {
		for _, item := range items {
			values.Add(key, item)
		}
	}

	for key, item := range event.QueryStringParameters {
		if _, ok := values[key]; !ok {
			values.Add(key, item)
		}
	}

	return values.Encode()
}

func withPlatformInvocation(ctx context.Context) context.Context {
	inv := Invocation{}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		inv.RequestID = lc.AwsRequestID
		inv.FunctionARN = lc.InvokedFunctionArn
	}
	if deadline, ok := ctx.Deadline(); ok {
		inv.Deadline = deadline
	}
	return WithInvocation(ctx, inv)
}

func isBinary(header http.Header, body []byte) bool {
	if len(body) == 0 {
		return false
	}

	if encoding := header.Get("Content-Encoding"); encoding != "" && encoding != "identity" {
		return true
	}

	if !utf8.Valid(body) {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return !isTextMediaType(mediaType)
}

func isTextMediaType(mediaType string) bool {
	if strings.HasPrefix(mediaType, "text/") ||
		strings.HasSuffix(mediaType, "+json") ||
		strings.HasSuffix(mediaType, "+xml") {
		return true
	}

	switch mediaType {
	case "application/json",
		"application/xml",
		"application/javascript",
		"application/x-www-form-urlencoded",
		"application/graphql":
		return true
	}
	return false
}
