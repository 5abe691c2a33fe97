package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	rec := tracetest.NewSpanRecorder()
	return rec, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
}

func TestStart_RecordsAttributes(t *testing.T) {
	rec, tp := newRecorder()

	_, span := Start(context.Background(), tp.Tracer(TracerName), "scrape.source",
		attribute.Int("source_id", 4))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "scrape.source", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("source_id", 4))
	assert.Equal(t, TracerName, spans[0].InstrumentationScope().Name)
}

func TestStart_NilTracerUsesGlobal(t *testing.T) {
	ctx, span := Start(context.Background(), nil, "scrape.run")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
}

func TestRecordError(t *testing.T) {
	rec, tp := newRecorder()

	_, span := tp.Tracer(TracerName).Start(context.Background(), "scrape.run")
	RecordError(span, errors.New("context canceled"))
	span.End()

	_, ok := tp.Tracer(TracerName).Start(context.Background(), "scrape.ok")
	RecordError(ok, nil)
	ok.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}
