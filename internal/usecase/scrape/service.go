package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"flight-timetable/internal/airport"
	"flight-timetable/internal/domain/entity"
	"flight-timetable/internal/observability/logging"
	"flight-timetable/internal/observability/metrics"
	"flight-timetable/internal/observability/tracing"
	"flight-timetable/internal/timetable"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DocumentFetcher returns the raw departures page for a source id.
type DocumentFetcher interface {
	Fetch(ctx context.Context, sourceID int) (string, error)
}

// Pacer blocks between source fetches.
type Pacer interface {
	Wait(ctx context.Context) error
}

// UnresolvedName is an arrival display string that matched no airport.
type UnresolvedName struct {
	SourceID     int    `json:"sourceId"`
	FlightNumber string `json:"flightNumber"`
	RawName      string `json:"rawName"`
}

// SourceStats describes what one source page contributed.
type SourceStats struct {
	SourceID    int
	AirportCode string
	FetchFailed bool
	Candidates  int
	Irrelevant  int
	Unresolved  []UnresolvedName
	// Relevant is the number of candidates that passed the filter and resolved.
	Relevant   int
	Added      int
	Duplicates int
	Duration   time.Duration
}

// Result is the outcome of a full run.
type Result struct {
	RunID      string
	Flights    []entity.FlightEntry
	Airports   []entity.CatalogEntry
	Summary    entity.Summary
	Unresolved []UnresolvedName
	Sources    []SourceStats
	Duration   time.Duration
}

// Service runs the scrape pipeline over a set of sources.
// Sources are processed one at a time, in ascending id order.
type Service struct {
	Registry  *airport.Registry
	Resolver  *airport.Resolver
	Extractor *timetable.Extractor
	Policy    timetable.Policy
	Fetcher   DocumentFetcher
	Pacer     Pacer

	// SourceIDs restricts the run to these ids. Empty means every registry source.
	// Ids are always visited in ascending order.
	SourceIDs []int

	// Tracer overrides the global tracer.
	Tracer trace.Tracer
}

// NewService wires a Service with the default relevance policy and a memoizing resolver.
// pacer may be nil.
func NewService(reg *airport.Registry, fetcher DocumentFetcher, pacer Pacer) *Service {
	return &Service{
		Registry:  reg,
		Resolver:  airport.NewResolver(reg),
		Extractor: timetable.NewExtractor(),
		Policy:    timetable.DefaultPolicy(),
		Fetcher:   fetcher,
		Pacer:     pacer,
	}
}

// Run fetches and processes every source, then finalizes the flight list and catalog.
//
// A failed fetch is logged and treated as an empty page. The only errors returned are
// ErrNoSources, when no configured id is in the registry, and cancellation of ctx
// between sources, wrapped in ErrRunCanceled.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := logging.WithRun(logging.FromContext(ctx), runID)
	ctx = logging.WithLogger(ctx, logger)

	origins := s.origins(logger)
	if len(origins) == 0 {
		return nil, ErrNoSources
	}

	ctx, span := tracing.Start(ctx, s.Tracer, "scrape.run",
		attribute.String("run_id", runID),
		attribute.Int("sources", len(origins)))
	defer span.End()

	logger.Info("scrape run started", slog.Int("sources", len(origins)))

	agg := timetable.NewAggregator()
	res := &Result{RunID: runID, Sources: make([]SourceStats, 0, len(origins))}

	for i, origin := range origins {
		if err := s.wait(ctx); err != nil {
			err = fmt.Errorf("%w after %d/%d sources: %w", ErrRunCanceled, i, len(origins), err)
			tracing.RecordError(span, err)
			return nil, err
		}

		logger.Info("fetching source",
			slog.Int("index", i+1),
			slog.Int("total", len(origins)),
			slog.Int("source_id", origin.ID),
			slog.String("airport_code", origin.Code),
			slog.String("airport", origin.ShortName))

		stats := s.runSource(ctx, origin, agg)
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("%w at source %d: %w", ErrRunCanceled, origin.ID, err)
			tracing.RecordError(span, err)
			return nil, err
		}

		res.Sources = append(res.Sources, stats)
		res.Unresolved = append(res.Unresolved, stats.Unresolved...)
	}

	res.Flights = agg.Finalize()
	res.Airports = airport.BuildCatalog(s.Registry, res.Flights)
	res.Summary = airport.Summarize(res.Flights)
	res.Duration = time.Since(start)

	metrics.UpdateRunTotals(res.Summary.FlightCount, len(res.Airports))
	span.SetAttributes(
		attribute.Int("flights", res.Summary.FlightCount),
		attribute.Int("airports", len(res.Airports)),
		attribute.Int("unresolved", len(res.Unresolved)))

	logger.Info("scrape run completed",
		slog.Int("flights", res.Summary.FlightCount),
		slog.Int("airports", res.Summary.AirportCount),
		slog.Any("airlines", res.Summary.Airlines),
		slog.Int("unresolved", len(res.Unresolved)),
		slog.Duration("duration", res.Duration))

	return res, nil
}

// origins maps the configured source ids to registry rows, in ascending id order.
// Unknown ids are logged and skipped.
func (s *Service) origins(logger *slog.Logger) []entity.AirportRef {
	ids := s.Registry.SourceIDs()
	if len(s.SourceIDs) > 0 {
		ids = append([]int(nil), s.SourceIDs...)
		sort.Ints(ids)
	}

	refs := make([]entity.AirportRef, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		ref, ok := s.Registry.LookupByID(id)
		if !ok {
			logger.Warn("unknown source id, skipping", slog.Int("source_id", id))
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

func (s *Service) wait(ctx context.Context) error {
	if s.Pacer == nil {
		return ctx.Err()
	}
	return s.Pacer.Wait(ctx)
}

func (s *Service) runSource(ctx context.Context, origin entity.AirportRef, agg *timetable.Aggregator) SourceStats {
	logger := logging.FromContext(ctx)
	start := time.Now()

	ctx, span := tracing.Start(ctx, s.Tracer, "scrape.source",
		attribute.Int("source_id", origin.ID),
		attribute.String("airport_code", origin.Code))
	defer span.End()

	page, err := s.Fetcher.Fetch(ctx, origin.ID)
	if err != nil {
		logger.Warn("failed to fetch timetable page",
			slog.Int("source_id", origin.ID),
			slog.String("airport_code", origin.Code),
			slog.Any("error", err))
		tracing.RecordError(span, err)
		page = ""
	}

	stats := s.processDocument(ctx, page, origin, agg)
	stats.FetchFailed = err != nil
	stats.Duration = time.Since(start)

	metrics.RecordSourceFetch(err == nil, stats.Duration)
	span.SetAttributes(
		attribute.Int("candidates", stats.Candidates),
		attribute.Int("relevant", stats.Relevant),
		attribute.Int("added", stats.Added))

	logger.Info("source processed",
		slog.Int("source_id", origin.ID),
		slog.String("airport_code", origin.Code),
		slog.Int("candidates", stats.Candidates),
		slog.Int("relevant", stats.Relevant),
		slog.Int("added", stats.Added))

	return stats
}

// ProcessDocument runs one page through extraction, filtering and resolution and folds
// the survivors into agg. It never fails: an empty or unrecognized page contributes nothing.
func (s *Service) ProcessDocument(doc string, origin entity.AirportRef, agg *timetable.Aggregator) SourceStats {
	return s.processDocument(context.Background(), doc, origin, agg)
}

func (s *Service) processDocument(ctx context.Context, doc string, origin entity.AirportRef, agg *timetable.Aggregator) SourceStats {
	logger := logging.FromContext(ctx)
	stats := SourceStats{SourceID: origin.ID, AirportCode: origin.Code}

	candidates := s.Extractor.Extract(doc, origin)
	stats.Candidates = len(candidates)

	for _, c := range candidates {
		if !s.Policy.IsRelevant(c.FlightNumber) {
			stats.Irrelevant++
			continue
		}

		code, name, ok := s.Resolver.Canonicalize(c.Arrival.Airport)
		if !ok {
			logger.Warn("unknown arrival airport",
				slog.Int("source_id", origin.ID),
				slog.String("flight_number", c.FlightNumber),
				slog.String("raw_name", c.Arrival.Airport))
			metrics.RecordUnresolved()
			stats.Unresolved = append(stats.Unresolved, UnresolvedName{
				SourceID:     origin.ID,
				FlightNumber: c.FlightNumber,
				RawName:      c.Arrival.Airport,
			})
			continue
		}
		c.Arrival.AirportCode = code
		c.Arrival.Airport = name
		stats.Relevant++

		if agg.Add(c) {
			stats.Added++
		} else {
			stats.Duplicates++
		}
	}

	metrics.RecordCandidates(stats.Candidates)
	metrics.RecordDropped(metrics.ReasonIrrelevant, stats.Irrelevant)
	metrics.RecordDropped(metrics.ReasonUnresolved, len(stats.Unresolved))
	metrics.RecordDropped(metrics.ReasonDuplicate, stats.Duplicates)

	return stats
}
