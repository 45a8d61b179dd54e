package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nestwatch/filter"
	"nestwatch/models"
	"nestwatch/notify"
	"nestwatch/storage"
)

// ErrSweepInProgress is returned when a sweep is triggered while
// another one holds the lease.
var ErrSweepInProgress = errors.New("sweep already in progress")

const defaultSweepWorkers = 4

// SweepService re-evaluates all saved searches against properties
// created since the last sweep and emits one notification intent plus
// one counter update per search with at least one match.
type SweepService struct {
	store    storage.Store
	notifier notify.Notifier
	log      zerolog.Logger
	workers  int
}

func NewSweepService(store storage.Store, notifier notify.Notifier, log zerolog.Logger, workers int) *SweepService {
	if workers <= 0 {
		workers = defaultSweepWorkers
	}
	return &SweepService{store: store, notifier: notifier, log: log, workers: workers}
}

// Run executes one complete sweep: take the lease, load the persisted
// high-water mark, evaluate the window, advance the mark, release the
// lease. The mark is only advanced after the window completed; an
// interrupted sweep replays the identical window on the next run.
func (s *SweepService) Run(ctx context.Context) (*models.SweepReport, error) {
	acquired, err := s.store.AcquireSweepLease(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire sweep lease: %w", err)
	}
	if !acquired {
		return nil, ErrSweepInProgress
	}
	defer func() {
		if err := s.store.ReleaseSweepLease(context.WithoutCancel(ctx)); err != nil {
			s.log.Error().Err(err).Msg("release sweep lease")
		}
	}()

	since, err := s.store.GetHighWaterMark(ctx)
	if err != nil {
		return nil, fmt.Errorf("load high-water mark: %w", err)
	}

	run := &models.SweepRun{
		StartedAt:   time.Now().UTC(),
		Status:      models.SweepStatusRunning,
		WindowStart: since,
	}
	if err := s.store.CreateSweepRun(ctx, run); err != nil {
		s.log.Warn().Err(err).Msg("create sweep run record")
	}

	report, err := s.RunSweep(ctx, since)
	if err != nil {
		s.finishRun(ctx, run, nil, err)
		return nil, err
	}

	if report.HighWaterMark.After(since) {
		if err := s.store.AdvanceHighWaterMark(ctx, report.HighWaterMark); err != nil {
			s.finishRun(ctx, run, report, err)
			return report, fmt.Errorf("advance high-water mark: %w", err)
		}
	}

	s.finishRun(ctx, run, report, nil)
	return report, nil
}

// RunSweep evaluates the window strictly after since. It neither takes
// the lease nor persists the mark, so a failed window can be replayed
// with the same bound.
//
// A fetch failure is fatal and returns an error; a per-search failure
// (unresolvable contact, notify or counter-update error) is recorded in
// the report and the remaining searches still run.
func (s *SweepService) RunSweep(ctx context.Context, since time.Time) (*models.SweepReport, error) {
	start := time.Now()

	properties, err := s.store.ListPropertiesSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch new properties: %w", err)
	}

	searches, err := s.store.ListSavedSearches(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch saved searches: %w", err)
	}

	report := &models.SweepReport{
		ProcessedSearches:  len(searches),
		NewPropertiesFound: len(properties),
		HighWaterMark:      since,
	}

	if len(properties) == 0 {
		report.DurationMs = time.Since(start).Milliseconds()
		return report, nil
	}

	// The mark advances to the newest created_at seen, not to "now";
	// properties created mid-fetch stay inside the next window.
	for i := range properties {
		if properties[i].CreatedAt.After(report.HighWaterMark) {
			report.HighWaterMark = properties[i].CreatedAt
		}
	}

	matches := s.evaluate(properties, searches)

	now := time.Now().UTC()
	for i := range searches {
		search := &searches[i]
		matched := matches[i]
		if len(matched) == 0 || search.Frequency == models.AlertNever {
			continue
		}
		if fail := s.emit(ctx, search, matched, now); fail != nil {
			report.Failures = append(report.Failures, *fail)
			continue
		}
		report.EmailsSent++
	}

	report.DurationMs = time.Since(start).Milliseconds()
	s.log.Info().
		Int("searches", report.ProcessedSearches).
		Int("new_properties", report.NewPropertiesFound).
		Int("notified", report.EmailsSent).
		Int("failures", len(report.Failures)).
		Time("high_water", report.HighWaterMark).
		Msg("sweep window complete")
	return report, nil
}

// evaluate computes the matching property subset per search. Searches
// are fanned out over a bounded worker pool; the predicate is pure so
// no ordering between pairs matters. Criteria parses are cached per
// distinct raw encoding within the run.
func (s *SweepService) evaluate(properties []models.Property, searches []models.SavedSearch) [][]models.Property {
	var cacheMu sync.Mutex
	cache := make(map[string]*models.FilterCriteria)
	criteriaFor := func(raw string) *models.FilterCriteria {
		cacheMu.Lock()
		defer cacheMu.Unlock()
		if c, ok := cache[raw]; ok {
			return c
		}
		c := filter.ParseQuery(raw)
		cache[raw] = c
		return c
	}

	matches := make([][]models.Property, len(searches))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				criteria := criteriaFor(searches[i].SearchParams)
				var matched []models.Property
				for j := range properties {
					if filter.Matches(&properties[j], criteria) {
						matched = append(matched, properties[j])
					}
				}
				matches[i] = matched
			}
		}()
	}
	for i := range searches {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return matches
}

// emit resolves the owner contact, hands the intent to the notifier and
// bumps the search's match counter. The counter moves once the intent is
// handed off, regardless of what happens downstream.
func (s *SweepService) emit(ctx context.Context, search *models.SavedSearch, matched []models.Property, at time.Time) *models.SweepFailure {
	contact, err := s.store.GetUserContact(ctx, search.UserID)
	if err != nil {
		return s.failure(search, fmt.Errorf("resolve owner contact: %w", err))
	}

	summaries := make([]models.PropertySummary, len(matched))
	for i := range matched {
		summaries[i] = matched[i].Summary()
	}
	intent := &notify.Intent{
		Recipient:   *contact,
		SearchID:    search.ID,
		SearchName:  search.Name,
		Description: search.Description,
		Matches:     summaries,
	}
	if err := s.notifier.Notify(ctx, intent); err != nil {
		return s.failure(search, fmt.Errorf("notify: %w", err))
	}

	if err := s.store.RecordSearchMatches(ctx, search.ID, len(matched), at); err != nil {
		return s.failure(search, fmt.Errorf("record matches: %w", err))
	}
	return nil
}

func (s *SweepService) failure(search *models.SavedSearch, err error) *models.SweepFailure {
	s.log.Error().Err(err).
		Str("search_id", search.ID.String()).
		Str("user_id", search.UserID).
		Msg("sweep: search failed")
	return &models.SweepFailure{SearchID: search.ID, UserID: search.UserID, Reason: err.Error()}
}

func (s *SweepService) finishRun(ctx context.Context, run *models.SweepRun, report *models.SweepReport, runErr error) {
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = models.SweepStatusCompleted
	if runErr != nil {
		run.Status = models.SweepStatusFailed
		run.ErrorMessage = runErr.Error()
	}
	if report != nil {
		run.ProcessedSearches = report.ProcessedSearches
		run.NewPropertiesFound = report.NewPropertiesFound
		run.EmailsSent = report.EmailsSent
		run.ErrorsCount = len(report.Failures)
	}
	if err := s.store.FinishSweepRun(context.WithoutCancel(ctx), run); err != nil {
		s.log.Warn().Err(err).Msg("finish sweep run record")
	}
}
