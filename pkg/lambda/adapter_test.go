package lambda

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for key, values := range r.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}

func passThrough(dispatch DispatchFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := dispatch(w, r); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func serveWith(handler http.Handler) DispatchFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		handler.ServeHTTP(w, r)
		return nil
	}
}

func TestTranslateRequest(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/queue",
		Headers: map[string]string{
			"content-type": "application/json",
			"Host":         "api.example.com",
			"X-Trace":      "single",
		},
		MultiValueHeaders: map[string][]string{
			"X-Trace": {"first", "second"},
		},
		QueryStringParameters: map[string]string{
			"limit": "10",
		},
		MultiValueQueryStringParameters: map[string][]string{
			"tag": {"a", "b"},
		},
		Body: `{"customer_name":"Ada"}`,
		RequestContext: events.APIGatewayProxyRequestContext{
			Identity: events.APIGatewayRequestIdentity{SourceIP: "203.0.113.7"},
		},
	}

	req, err := TranslateRequest(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/queue", req.URL.Path)
	assert.Equal(t, []string{"10"}, req.URL.Query()["limit"])
	assert.Equal(t, []string{"a", "b"}, req.URL.Query()["tag"])
	assert.Equal(t, "/api/queue?"+req.URL.RawQuery, req.RequestURI)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, []string{"first", "second"}, req.Header.Values("X-Trace"))
	assert.Equal(t, "api.example.com", req.Host)
	assert.Equal(t, "203.0.113.7:0", req.RemoteAddr)
	assert.Equal(t, int64(len(event.Body)), req.ContentLength)

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, event.Body, string(body))
}

func TestTranslateRequestMergesCaseVariantHeaders(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/",
		Headers: map[string]string{
			"accept": "text/html",
			"Accept": "application/json",
		},
	}

	req, err := TranslateRequest(context.Background(), event)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"text/html", "application/json"}, req.Header.Values("Accept"))
	assert.Len(t, req.Header, 1)
}

func TestTranslateRequestDecodesBase64Body(t *testing.T) {
	payload := []byte{0x00, 0xff, 0x10, 0x80, 0x7f}
	event := events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPut,
		Path:            "/upload",
		Body:            base64.StdEncoding.EncodeToString(payload),
		IsBase64Encoded: true,
	}

	req, err := TranslateRequest(context.Background(), event)
	require.NoError(t, err)

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, body)
}

func TestTranslateRequestRejectsInvalidBase64(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/upload",
		Body:            "%%%not-base64%%%",
		IsBase64Encoded: true,
	}

	_, err := TranslateRequest(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to decode request body")
}

func TestTranslateRequestDefaults(t *testing.T) {
	req, err := TranslateRequest(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/", req.URL.Path)
	assert.Equal(t, http.NoBody, req.Body)
}

func TestTranslateRequestCarriesInvocation(t *testing.T) {
	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{
		AwsRequestID:       "c6af9ac6-7b61-11e6-9a41-93e8deadbeef",
		InvokedFunctionArn: "arn:aws:lambda:us-east-1:123456789012:function:api",
	})

	req, err := TranslateRequest(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/"})
	require.NoError(t, err)

	inv, ok := InvocationFromContext(req.Context())
	require.True(t, ok)
	assert.Equal(t, "c6af9ac6-7b61-11e6-9a41-93e8deadbeef", inv.RequestID)
	assert.Equal(t, "arn:aws:lambda:us-east-1:123456789012:function:api", inv.FunctionARN)
	assert.Zero(t, inv.Remaining())
}

func TestTranslateResponse(t *testing.T) {
	t.Run("TextBody", func(t *testing.T) {
		resp := TranslateResponse(&Response{
			StatusCode: http.StatusCreated,
			Header: http.Header{
				"Content-Type": {"application/json; charset=utf-8"},
				"Set-Cookie":   {"a=1", "b=2"},
			},
			Body: []byte(`{"ok":true}`),
		})

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.False(t, resp.IsBase64Encoded)
		assert.Equal(t, `{"ok":true}`, resp.Body)
		assert.Equal(t, "application/json; charset=utf-8", resp.Headers["Content-Type"])
		assert.Equal(t, []string{"a=1", "b=2"}, resp.MultiValueHeaders["Set-Cookie"])
		assert.NotContains(t, resp.Headers, "Set-Cookie")
	})

	t.Run("BinaryContentType", func(t *testing.T) {
		body := []byte("%PDF-1.4 plain ascii")
		resp := TranslateResponse(&Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"application/pdf"}},
			Body:       body,
		})

		assert.True(t, resp.IsBase64Encoded)
		assert.Equal(t, base64.StdEncoding.EncodeToString(body), resp.Body)
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		body := []byte{0xff, 0xfe, 0xfd}
		resp := TranslateResponse(&Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"text/plain"}},
			Body:       body,
		})

		assert.True(t, resp.IsBase64Encoded)
	})

	t.Run("CompressedBody", func(t *testing.T) {
		resp := TranslateResponse(&Response{
			StatusCode: http.StatusOK,
			Header: http.Header{
				"Content-Type":     {"application/json"},
				"Content-Encoding": {"gzip"},
			},
			Body: []byte("pretend-gzip"),
		})

		assert.True(t, resp.IsBase64Encoded)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		resp := TranslateResponse(&Response{
			StatusCode: http.StatusNoContent,
			Header:     http.Header{"Content-Type": {"application/octet-stream"}},
		})

		assert.False(t, resp.IsBase64Encoded)
		assert.Empty(t, resp.Body)
	})
}

func TestRoundTripThroughIdentityHandler(t *testing.T) {
	fn := NewFunction(passThrough, serveWith(echoHandler()))

	t.Run("BinaryPayload", func(t *testing.T) {
		payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0x01, 0xff}
		encoded := base64.StdEncoding.EncodeToString(payload)

		resp, err := fn.Invoke(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodPost,
			Path:       "/echo",
			Headers: map[string]string{
				"Content-Type":   "application/octet-stream",
				"X-Custom-Value": "MixedCase Value",
			},
			Body:            encoded,
			IsBase64Encoded: true,
		})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, resp.IsBase64Encoded)
		assert.Equal(t, encoded, resp.Body)
		assert.Equal(t, "application/octet-stream", resp.Headers["Content-Type"])
		assert.Equal(t, "MixedCase Value", resp.Headers["X-Custom-Value"])
	})

	t.Run("TextPayload", func(t *testing.T) {
		resp, err := fn.Invoke(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodPost,
			Path:       "/echo",
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"name":"Ada"}`,
		})
		require.NoError(t, err)

		assert.False(t, resp.IsBase64Encoded)
		assert.Equal(t, `{"name":"Ada"}`, resp.Body)
	})
}

func TestFunctionMatchesPlainHTTPTransport(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Path", r.URL.Path)
		w.Header().Set("X-Query", r.URL.Query().Get("q"))
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, "hello "+r.Header.Get("X-Name"))
	})

	recorder := httptest.NewRecorder()
	plain := httptest.NewRequest(http.MethodGet, "/greet?q=search", nil)
	plain.Header.Set("X-Name", "Ada")
	handler.ServeHTTP(recorder, plain)

	fn := NewFunction(passThrough, serveWith(handler))
	resp, err := fn.Invoke(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		Path:                  "/greet",
		QueryStringParameters: map[string]string{"q": "search"},
		Headers:               map[string]string{"X-Name": "Ada"},
	})
	require.NoError(t, err)

	assert.Equal(t, recorder.Code, resp.StatusCode)
	assert.Equal(t, recorder.Body.String(), resp.Body)
	for key := range recorder.Header() {
		assert.Equal(t, recorder.Header().Get(key), resp.Headers[key], key)
	}
}

func TestFunctionRoutesTranslationFailuresThroughEntry(t *testing.T) {
	fn := NewFunction(passThrough, serveWith(echoHandler()))

	resp, err := fn.Invoke(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/echo",
		Body:            "***",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Body, "unable to decode request body"))
}

func TestResponseWriter(t *testing.T) {
	t.Run("FreezesHeadersAtWriteHeader", func(t *testing.T) {
		w := NewResponseWriter()
		w.Header().Set("X-Before", "1")
		w.WriteHeader(http.StatusTeapot)
		w.Header().Set("X-After", "2")
		w.WriteHeader(http.StatusOK)

		resp := w.Response()
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
		assert.Equal(t, "1", resp.Header.Get("X-Before"))
		assert.Empty(t, resp.Header.Get("X-After"))
	})

	t.Run("SniffsContentType", func(t *testing.T) {
		w := NewResponseWriter()
		_, _ = w.Write([]byte("<html><body>hi</body></html>"))

		resp := w.Response()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	})

	t.Run("EmptyResponse", func(t *testing.T) {
		resp := NewResponseWriter().Response()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Body)
	})
}
