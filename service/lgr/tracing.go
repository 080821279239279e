package lgr

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// InitTracing installs an SDK tracer provider so spans get real trace and
// span ids, which the handler then attaches to every record logged inside
// them. No exporter is configured. Call the returned func on exit.
func InitTracing() func(context.Context) error {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
