// Package tracing is a thin wrapper around OpenTelemetry tracing, so that the
// kernel can record one span per scheduler quantum without depending on the
// upstream packages directly.
package tracing

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Tracer owns a trace provider and the spans it exports.
// A nil *Tracer is valid, and produces no spans.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	closer   io.Closer
}

// Open creates a Tracer exporting JSON spans to outputFile, or to os.Stdout
// if outputFile is empty.
func Open(serviceName, serviceVersion, outputFile string) (tr *Tracer, err error) {
	var w io.Writer = os.Stdout
	var closer io.Closer

	if outputFile != "" {
		var file *os.File
		file, err = os.Create(outputFile)
		if err != nil {
			return
		}
		w, closer = file, file
	}

	tr, err = New(serviceName, serviceVersion, w)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return
	}

	tr.closer = closer

	return
}

// New creates a Tracer exporting JSON spans to w.
func New(serviceName, serviceVersion string, w io.Writer) (tr *Tracer, err error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return
	}

	return NewWithExporter(serviceName, serviceVersion, exporter)
}

// NewWithExporter creates a Tracer using the supplied span exporter.
func NewWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) (tr *Tracer, err error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)

	tr = &Tracer{
		provider: provider,
		tracer:   provider.Tracer("github.com/ezrec/ukernel"),
	}

	return
}

// Shutdown flushes any pending spans, and closes the output file.
func (tr *Tracer) Shutdown(ctx context.Context) (err error) {
	if tr == nil {
		return
	}

	err = tr.provider.Shutdown(ctx)
	if tr.closer != nil {
		if cerr := tr.closer.Close(); err == nil {
			err = cerr
		}
	}

	return
}

// Span wraps an OpenTelemetry span. A nil *Span is valid, and records nothing.
type Span struct {
	span trace.Span
}

// StartSpan starts a new internal span, as a child of any span in ctx.
func (tr *Tracer) StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if tr == nil {
		return ctx, nil
	}

	ctx, span := tr.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))

	return ctx, &Span{span: span}
}

// WithAttributes attaches string attributes to the span.
func (sp *Span) WithAttributes(attrs map[string]string) *Span {
	if sp == nil || len(attrs) == 0 {
		return sp
	}

	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, attribute.String(k, v))
	}
	sp.span.SetAttributes(kvs...)

	return sp
}

// SetCount attaches an integer attribute to the span.
func (sp *Span) SetCount(key string, value int) *Span {
	if sp == nil {
		return sp
	}

	sp.span.SetAttributes(attribute.Int(key, value))

	return sp
}

// EndSpan ends the span, recording an error status if err is not nil.
func EndSpan(sp *Span, err error) {
	if sp == nil {
		return
	}

	if err != nil {
		sp.span.RecordError(err)
		sp.span.SetStatus(codes.Error, err.Error())
	} else {
		sp.span.SetStatus(codes.Ok, "")
	}

	sp.span.End()
}
