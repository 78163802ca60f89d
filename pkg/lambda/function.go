package lambda

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

// Function is the invocation entry point registered with the Lambda runtime.
type Function struct {
	entry   EntryFunc
	handler http.Handler
}

// NewFunction serves every invocation through entry(dispatch).
func NewFunction(entry EntryFunc, dispatch DispatchFunc) *Function {
	return &Function{
		entry:   entry,
		handler: entry(dispatch),
	}
}

// Invoke handles one proxy event. Failures are rendered into the response by
// the entry chain, so the returned error is always nil.
func (f *Function) Invoke(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	w := NewResponseWriter()

	req, err := TranslateRequest(ctx, event)
	if err != nil {
		f.entry(failWith(err)).ServeHTTP(w, fallbackRequest(ctx, event))
		return TranslateResponse(w.Response()), nil
	}

	f.handler.ServeHTTP(w, req)
	return TranslateResponse(w.Response()), nil
}

func failWith(err error) DispatchFunc {
	return func(http.ResponseWriter, *http.Request) error {
		return err
	}
}

// fallbackRequest keeps the request line and headers of an event whose body
// could not be decoded, so the entry chain can still answer it.
func fallbackRequest(ctx context.Context, event events.APIGatewayProxyRequest) *http.Request {
	if req, err := newRequest(ctx, event, nil); err == nil {
		return req
	}

	req := &http.Request{
		Method:     http.MethodGet,
		URL:        &url.URL{Path: "/"},
		RequestURI: "/",
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     requestHeaders(event),
		Body:       http.NoBody,
	}
	return req.WithContext(withPlatformInvocation(ctx))
}
