package logging

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"

	"github.com/pg-sharding/pguuidv7/tracing"
	"github.com/pg-sharding/pguuidv7/uuidv7"
)

const (
	requestIDLogKey = "request_id"
	traceIDLogKey   = "trace_id"
	spanIDLogKey    = "span_id"
	endpointLogKey  = "endpoint"
	methodLogKey    = "method"

	requestIDHeader = "X-Request-Id"
)

// newID draws from gen, or from the shared process-wide generator when gen
// is nil.
func newID(gen *uuidv7.Generator) (uuidv7.UUID, error) {
	if gen != nil {
		return gen.Next()
	}
	return uuidv7.New()
}

// RequestIDMiddleware stamps every request with a fresh version 7 request
// ID, echoes it in the X-Request-Id response header and binds a
// request-scoped logger into the context. Trace and span IDs join the
// logger when the request carries an active span. A request never fails
// because the ID could not be generated; the middleware logs the entropy
// failure and continues without one.
func RequestIDMiddleware(gen *uuidv7.Generator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			mLogger := L(ctx).With(StringAttr(endpointLogKey, r.URL.RequestURI()))

			if id, err := newID(gen); err != nil {
				mLogger.Warn("request id unavailable", ErrAttr(err))
			} else {
				mLogger = mLogger.With(StringAttr(requestIDLogKey, id.String()))
				w.Header().Set(requestIDHeader, id.String())
				tracing.TraceValue(ctx, requestIDLogKey, id.String())
			}

			if span := trace.SpanContextFromContext(ctx); span.IsValid() {
				mLogger = mLogger.With(
					StringAttr(traceIDLogKey, span.TraceID().String()),
					StringAttr(spanIDLogKey, span.SpanID().String()),
				)
			}

			ctx = ContextWithLogger(ctx, mLogger)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

// WithRequestIDInLogger is a gRPC interceptor that stamps every unary call
// with a fresh version 7 request ID and enriches the call logger with the
// method name plus trace and span IDs when a span is active.
func WithRequestIDInLogger(gen *uuidv7.Generator) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		mLogger := L(ctx).With(StringAttr(methodLogKey, info.FullMethod))

		if id, genErr := newID(gen); genErr != nil {
			mLogger.Warn("request id unavailable", ErrAttr(genErr))
		} else {
			mLogger = mLogger.With(StringAttr(requestIDLogKey, id.String()))
			tracing.TraceValue(ctx, requestIDLogKey, id.String())
		}

		if span := trace.SpanContextFromContext(ctx); span.IsValid() {
			mLogger = mLogger.With(
				StringAttr(traceIDLogKey, span.TraceID().String()),
				StringAttr(spanIDLogKey, span.SpanID().String()),
			)
		}

		ctx = ContextWithLogger(ctx, mLogger)
		return handler(ctx, req)
	}
}
