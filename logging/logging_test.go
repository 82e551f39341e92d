package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"

	"github.com/pg-sharding/pguuidv7/entropy"
	"github.com/pg-sharding/pguuidv7/uuidv7"
)

// decodeLogLines parses one JSON object per line of handler output.
func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil {
			t.Fatalf("log line %q is not JSON: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNewLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithWriter(&buf), WithSetDefault(false), WithAddSource(false))

	logger.Info("hello", StringAttr("component", "test"))

	records := decodeLogLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0]["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", records[0]["msg"])
	}
	if records[0]["component"] != "test" {
		t.Errorf("component = %v, want test", records[0]["component"])
	}
}

func TestNewLoggerTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithWriter(&buf), WithIsJSON(false), WithSetDefault(false), WithAddSource(false))

	logger.Info("hello")

	if !bytes.Contains(buf.Bytes(), []byte("msg=hello")) {
		t.Errorf("text output %q missing msg=hello", buf.String())
	}
}

func TestWithLevel(t *testing.T) {
	logger := NewLogger(WithLevel("warn"), WithSetDefault(false), WithWriter(&bytes.Buffer{}))
	if logger.Enabled(context.Background(), LevelInfo) {
		t.Error("warn logger enabled info level")
	}
	if !logger.Enabled(context.Background(), LevelWarn) {
		t.Error("warn logger disabled warn level")
	}

	fallback := NewLogger(WithLevel("nonsense"), WithSetDefault(false), WithWriter(&bytes.Buffer{}))
	if !fallback.Enabled(context.Background(), LevelInfo) {
		t.Error("unparseable level did not fall back to info")
	}
	if fallback.Enabled(context.Background(), LevelDebug) {
		t.Error("unparseable level enabled debug")
	}
}

func TestContextLogger(t *testing.T) {
	if L(context.Background()) != Default() {
		t.Error("empty context did not yield the default logger")
	}

	var buf bytes.Buffer
	logger := NewLogger(WithWriter(&buf), WithSetDefault(false))
	ctx := ContextWithLogger(context.Background(), logger)
	if L(ctx) != logger {
		t.Error("context did not yield the bound logger")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(WithWriter(&buf), WithSetDefault(false), WithAddSource(false))

	handlerRan := false
	h := RequestIDMiddleware(uuidv7.NewGenerator())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		L(r.Context()).Info("handled")
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ids?count=2", nil)
	req = req.WithContext(ContextWithLogger(req.Context(), base))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if !handlerRan {
		t.Fatal("handler did not run")
	}

	header := rr.Header().Get(requestIDHeader)
	if header == "" {
		t.Fatal("response missing X-Request-Id header")
	}
	if _, err := uuidv7.Parse(header); err != nil {
		t.Errorf("header %q is not a version 7 identifier: %v", header, err)
	}

	records := decodeLogLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0][requestIDLogKey] != header {
		t.Errorf("logged request_id = %v, want %v", records[0][requestIDLogKey], header)
	}
	if records[0][endpointLogKey] != "/v1/ids?count=2" {
		t.Errorf("logged endpoint = %v", records[0][endpointLogKey])
	}
}

func TestRequestIDMiddlewareEntropyFailure(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(WithWriter(&buf), WithSetDefault(false), WithAddSource(false))

	gen := uuidv7.NewGenerator(uuidv7.WithEntropy(entropy.SourceFunc(func(p []byte) error {
		return errors.New("dry")
	})))
	h := RequestIDMiddleware(gen)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		L(r.Context()).Info("handled")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ids", nil)
	req = req.WithContext(ContextWithLogger(req.Context(), base))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, requests must not fail on id generation", rr.Code)
	}
	if rr.Header().Get(requestIDHeader) != "" {
		t.Error("header set despite entropy failure")
	}

	records := decodeLogLines(t, &buf)
	if len(records) != 2 {
		t.Fatalf("got %d records, want warn plus handler line", len(records))
	}
	if records[0]["msg"] != "request id unavailable" {
		t.Errorf("first record = %v, want entropy warning", records[0]["msg"])
	}
	if _, ok := records[1][requestIDLogKey]; ok {
		t.Error("handler logger carries a request_id despite failure")
	}
}

func TestWithRequestIDInLogger(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(WithWriter(&buf), WithSetDefault(false), WithAddSource(false))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		SpanID:     trace.SpanID{0xa1, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xa7, 0xa8},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(ContextWithLogger(context.Background(), base), sc)

	interceptor := WithRequestIDInLogger(nil)
	resp, err := interceptor(ctx, "in", &grpc.UnaryServerInfo{FullMethod: "/uuidgen.v1/Generate"},
		func(ctx context.Context, _ interface{}) (interface{}, error) {
			L(ctx).Info("inside")
			return "out", nil
		})
	if err != nil {
		t.Fatalf("interceptor returned error: %v", err)
	}
	if resp != "out" {
		t.Errorf("response = %v, want out", resp)
	}

	records := decodeLogLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec[methodLogKey] != "/uuidgen.v1/Generate" {
		t.Errorf("method = %v", rec[methodLogKey])
	}
	id, ok := rec[requestIDLogKey].(string)
	if !ok {
		t.Fatal("record missing request_id")
	}
	if _, err := uuidv7.Parse(id); err != nil {
		t.Errorf("request_id %q is not a version 7 identifier: %v", id, err)
	}
	if rec[traceIDLogKey] != sc.TraceID().String() {
		t.Errorf("trace_id = %v, want %v", rec[traceIDLogKey], sc.TraceID().String())
	}
	if rec[spanIDLogKey] != sc.SpanID().String() {
		t.Errorf("span_id = %v, want %v", rec[spanIDLogKey], sc.SpanID().String())
	}
}
