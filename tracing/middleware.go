package tracing

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
)

// Middleware wraps next with span creation for every request. Spans are
// named "METHOD /path" so routes stay distinguishable in the collector.
func Middleware(next http.Handler) http.Handler {
	return otelhttp.NewHandler(
		next,
		"http.server",
		otelhttp.WithPropagators(otel.GetTextMapPropagator()),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			uri := r.RequestURI
			if r.URL != nil {
				uri = r.URL.Path
			}
			return r.Method + " " + uri
		}),
	)
}

// WithServerTracing returns the gRPC server option that traces unary and
// stream calls.
func WithServerTracing() grpc.ServerOption {
	return grpc.StatsHandler(otelgrpc.NewServerHandler(
		otelgrpc.WithPropagators(otel.GetTextMapPropagator()),
	))
}

// WithClientTracing returns the gRPC dial option that traces outgoing
// calls.
func WithClientTracing() grpc.DialOption {
	return grpc.WithStatsHandler(otelgrpc.NewClientHandler(
		otelgrpc.WithPropagators(otel.GetTextMapPropagator()),
	))
}
