package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/evyataryagoni/ipenrich/internal/eligibility"
	"github.com/evyataryagoni/ipenrich/internal/logger"
	"github.com/evyataryagoni/ipenrich/internal/metrics"
	"github.com/evyataryagoni/ipenrich/internal/models"
	"github.com/evyataryagoni/ipenrich/internal/provider"
	"github.com/evyataryagoni/ipenrich/internal/reducer"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the number of provider requests allowed in flight per batch
const DefaultConcurrency = 10

// Batch error messages surfaced verbatim to the host
const (
	MsgRateLimited  = "Reached Daily Lookup Limit"
	MsgRequestError = "Error in Request"
)

// LookupService orchestrates one batch of enrichment lookups
//
// Flow:
//  1. Drop ineligible identifiers (no request, no result row)
//  2. Fan out one provider request per identifier, at most Concurrency at once
//  3. Fail the whole batch on the first rate limit or transport error
//  4. Reduce successful bodies; empty and unexpected-status rows become data: null
type LookupService struct {
	filter      *eligibility.Filter
	fetcher     provider.Fetcher
	reducer     *reducer.Reducer
	concurrency int64
	validator   *validator.Validate
	metrics     *metrics.Metrics // optional
	logger      *logger.Logger
}

// Config wires the collaborators of a LookupService
type Config struct {
	Filter      *eligibility.Filter // nil means no extra ignore list
	Fetcher     provider.Fetcher    // required
	Reducer     *reducer.Reducer    // nil means CLDR country names
	Concurrency int                 // <= 0 means DefaultConcurrency
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
}

// NewLookupService creates a new lookup service
func NewLookupService(cfg Config) *LookupService {
	if cfg.Filter == nil {
		cfg.Filter = eligibility.NewFilter(nil)
	}
	if cfg.Reducer == nil {
		cfg.Reducer = reducer.New(nil)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewDefault()
	}
	return &LookupService{
		filter:      cfg.Filter,
		fetcher:     cfg.Fetcher,
		reducer:     cfg.Reducer,
		concurrency: int64(cfg.Concurrency),
		validator:   validator.New(),
		metrics:     cfg.Metrics,
		logger:      cfg.Logger.WithComponent("LookupService"),
	}
}

// indexedOutcome ties an outcome back to its slot in the eligible list
type indexedOutcome struct {
	index   int
	outcome models.Outcome
}

// LookupBatch enriches the eligible identifiers in a single batch
//
// Returns one Result per eligible identifier, in filter order, or a
// *models.BatchError when any lookup was rate limited or failed in transport.
// After a fatal outcome no further requests are dispatched; requests
// already in flight finish in the background, even when the caller's
// context is cancelled, and their outcomes are discarded.
func (s *LookupService) LookupBatch(ctx context.Context, entities []models.Identifier, opts models.LookupOptions) ([]models.Result, error) {
	start := time.Now()
	s.logger.Trace().Interface("entities", entities).Msg("doLookup")

	eligible := s.filter.Apply(entities)
	if s.metrics != nil {
		s.metrics.IneligibleTotal.Add(float64(len(entities) - len(eligible)))
	}

	results, err := s.run(ctx, eligible, opts.AccessToken)
	s.observeBatch(start, err)
	if err != nil {
		return nil, err
	}

	s.logger.Trace().Interface("lookupResults", results).Msg("Lookup Results")
	return results, nil
}

// DoLookup is the host-facing entry point; same contract as LookupBatch
func (s *LookupService) DoLookup(ctx context.Context, entities []models.Identifier, opts models.LookupOptions) ([]models.Result, error) {
	return s.LookupBatch(ctx, entities, opts)
}

func (s *LookupService) run(ctx context.Context, eligible []models.Identifier, token string) ([]models.Result, error) {
	if len(eligible) == 0 {
		return []models.Result{}, nil
	}

	// Buffered to len(eligible): late finishers never block after we bail out
	outcomes := make(chan indexedOutcome, len(eligible))

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	// Started requests outlive the caller; the HTTP client timeout bounds them
	go s.dispatch(dispatchCtx, context.WithoutCancel(ctx), eligible, token, outcomes)

	slots := make([]models.Outcome, len(eligible))
	for received := 0; received < len(eligible); received++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case item := <-outcomes:
			s.recordOutcome(item.outcome)
			if item.outcome.Kind.Fatal() {
				stopDispatch()
				return nil, toBatchError(item.outcome)
			}
			slots[item.index] = item.outcome
		}
	}

	results := make([]models.Result, 0, len(slots))
	for _, outcome := range slots {
		results = append(results, s.toResult(outcome))
	}
	return results, nil
}

// dispatch starts one goroutine per identifier, bounded by the semaphore.
// dispatchCtx stops new work; requestCtx is detached from the caller so
// in-flight requests are never aborted.
func (s *LookupService) dispatch(dispatchCtx, requestCtx context.Context, eligible []models.Identifier, token string, out chan<- indexedOutcome) {
	sem := semaphore.NewWeighted(s.concurrency)

	for i, entity := range eligible {
		if err := sem.Acquire(dispatchCtx, 1); err != nil {
			return
		}
		// Acquire may succeed on a done context when a permit is free
		if dispatchCtx.Err() != nil {
			sem.Release(1)
			return
		}

		go func(index int, entity models.Identifier) {
			defer sem.Release(1)
			if s.metrics != nil {
				s.metrics.LookupsInFlight.Inc()
				defer s.metrics.LookupsInFlight.Dec()
			}

			started := time.Now()
			outcome := s.fetcher.Fetch(requestCtx, entity, token)
			if s.metrics != nil {
				s.metrics.ProviderLatency.WithLabelValues(outcome.Kind.String()).Observe(time.Since(started).Seconds())
			}
			out <- indexedOutcome{index: index, outcome: outcome}
		}(i, entity)
	}
}

func (s *LookupService) toResult(outcome models.Outcome) models.Result {
	switch outcome.Kind {
	case models.OutcomeSuccess:
		record := s.reducer.Reduce(outcome.Body)
		return models.Result{Entity: outcome.Identifier, Data: &record}
	case models.OutcomeUnexpectedStatus:
		s.logger.Warn().
			Str("entity", outcome.Identifier.Value).
			Int("status", outcome.StatusCode).
			Msg("Unexpected Non 200 HTTP Status Code")
		return models.Result{Entity: outcome.Identifier}
	default:
		return models.Result{Entity: outcome.Identifier}
	}
}

func (s *LookupService) recordOutcome(outcome models.Outcome) {
	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues(outcome.Kind.String()).Inc()
	}
}

func (s *LookupService) observeBatch(start time.Time, err error) {
	result := "success"
	var batchErr *models.BatchError
	switch {
	case err == nil:
	case errors.As(err, &batchErr):
		result = "batch_error"
		s.logger.Error().
			Str("entity", batchErr.Entity).
			Int("status", batchErr.HTTPStatus).
			Err(batchErr.Err).
			Msg(batchErr.Message)
	default:
		result = "cancelled"
		s.logger.Warn().Err(err).Msg("Batch lookup aborted")
	}
	if s.metrics != nil {
		s.metrics.BatchDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}
}

func toBatchError(outcome models.Outcome) *models.BatchError {
	if outcome.Kind == models.OutcomeRateLimited {
		return &models.BatchError{
			Message:    MsgRateLimited,
			Detail:     MsgRateLimited,
			Entity:     outcome.Identifier.Value,
			HTTPStatus: http.StatusTooManyRequests,
		}
	}
	detail := MsgRequestError
	if outcome.Err != nil {
		detail = outcome.Err.Error()
	}
	return &models.BatchError{
		Message: MsgRequestError,
		Detail:  detail,
		Entity:  outcome.Identifier.Value,
		Err:     outcome.Err,
	}
}
