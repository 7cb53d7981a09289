package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"teardown-leads/internal/domain"
	"teardown-leads/internal/export"
	"teardown-leads/internal/notify"
	"teardown-leads/internal/repository"
	"teardown-leads/internal/source"
)

// ErrInvalidListing envuelve los errores de validacion de un listing de entrada.
var ErrInvalidListing = errors.New("invalid listing")

// OpportunityExporter genera los archivos de una corrida.
type OpportunityExporter interface {
	Export(ctx context.Context, runType string, opps []domain.Opportunity, at time.Time) (export.Result, error)
}

// RunRequest describe una corrida del pipeline.
type RunRequest struct {
	RunType  string `json:"run_type"`
	Query    string `json:"query"`
	Location string `json:"location"`
}

// RunReport es el resultado de una corrida completa.
type RunReport struct {
	Run           domain.ScanRun       `json:"run"`
	Invalid       int                  `json:"invalid"`
	PersistErrors int                  `json:"persist_errors"`
	Opportunities []domain.Opportunity `json:"opportunities"`
	Export        *export.Result       `json:"export,omitempty"`
	Alerts        AlertResult          `json:"alerts"`
}

// PipelineOptions agrupa los umbrales de filtrado.
type PipelineOptions struct {
	MinScore         float64
	IncludePotential bool
	ModelVersion     string
}

// PipelineService coordina recoleccion, enriquecimiento, scoring, persistencia y distribucion.
type PipelineService struct {
	source          source.ListingSource
	enricher        *EnrichmentService
	scorer          *OpportunityService
	listings        repository.ListingRepository
	classifications repository.ClassificationRepository
	runs            repository.ScanRunRepository
	exporter        OpportunityExporter
	alerts          *AlertService
	validate        *validator.Validate
	opts            PipelineOptions
	logger          *zap.Logger
	now             func() time.Time
}

func NewPipelineService(
	src source.ListingSource,
	enricher *EnrichmentService,
	scorer *OpportunityService,
	listings repository.ListingRepository,
	classifications repository.ClassificationRepository,
	runs repository.ScanRunRepository,
	exporter OpportunityExporter,
	alerts *AlertService,
	opts PipelineOptions,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		source:          src,
		enricher:        enricher,
		scorer:          scorer,
		listings:        listings,
		classifications: classifications,
		runs:            runs,
		exporter:        exporter,
		alerts:          alerts,
		validate:        validator.New(),
		opts:            opts,
		logger:          logger,
		now:             time.Now,
	}
}

// Run ejecuta una corrida completa y deja el resultado registrado en scan_runs.
func (s *PipelineService) Run(ctx context.Context, req RunRequest) (RunReport, error) {
	if req.RunType == "" {
		req.RunType = "manual"
	}
	started := s.now()
	run := domain.ScanRun{
		ID:        uuid.NewString(),
		RunType:   req.RunType,
		Query:     req.Query,
		Location:  req.Location,
		Status:    domain.ScanStatusRunning,
		StartedAt: started,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return RunReport{}, fmt.Errorf("create scan run: %w", err)
	}
	logger := s.logger.With(zap.String("scan_run_id", run.ID), zap.String("run_type", run.RunType))
	logger.Info("pipeline started", zap.String("query", req.Query), zap.String("location", req.Location))

	report, err := s.execute(ctx, &run, req)
	run.DurationSeconds = s.now().Sub(started).Seconds()
	completed := s.now()
	run.CompletedAt = &completed
	if err != nil {
		run.Status = domain.ScanStatusFailed
		run.ErrorMessage = err.Error()
	} else {
		run.Status = domain.ScanStatusCompleted
	}

	// La corrida se cierra aunque el contexto del llamador se haya cancelado.
	if cerr := s.runs.Complete(context.WithoutCancel(ctx), run); cerr != nil {
		logger.Error("complete scan run", zap.Error(cerr))
	}
	report.Run = run
	if err != nil {
		logger.Error("pipeline failed", zap.Error(err))
		return report, err
	}
	logger.Info("pipeline completed",
		zap.Int("total", run.TotalListings),
		zap.Int("new", run.NewListings),
		zap.Int("opportunities", run.Opportunities),
		zap.Float64("duration_seconds", run.DurationSeconds),
	)
	return report, nil
}

func (s *PipelineService) execute(ctx context.Context, run *domain.ScanRun, req RunRequest) (RunReport, error) {
	var report RunReport

	raw, err := s.source.Collect(ctx, req.Query, req.Location)
	if err != nil {
		return report, fmt.Errorf("collect listings: %w", err)
	}

	listings, invalid := s.ValidListings(raw)
	report.Invalid = invalid
	listings = domain.DedupeByAddress(listings)
	run.TotalListings = len(listings)
	if len(listings) == 0 {
		s.logger.Warn("no listings collected", zap.String("scan_run_id", run.ID))
	}

	opps, newCount, persistErrors, err := s.ScoreAndPersist(ctx, listings, run.ID)
	if err != nil {
		return report, err
	}
	run.NewListings = newCount
	report.PersistErrors = persistErrors

	filtered := FilterOpportunities(opps, s.opts.MinScore, s.opts.IncludePotential)
	report.Opportunities = filtered
	run.Opportunities = len(filtered)

	if s.exporter != nil {
		res, err := s.exporter.Export(ctx, run.RunType, filtered, s.now())
		if err != nil {
			s.logger.Error("export failed", zap.String("scan_run_id", run.ID), zap.Error(err))
		} else {
			report.Export = &res
		}
	}

	if s.alerts != nil {
		run.HighValue = len(s.alerts.aboveThreshold(filtered))
		report.Alerts = s.alerts.Dispatch(ctx, run.RunType, filtered, notify.Summary{
			Collected:  len(raw),
			Classified: len(opps),
			HighValue:  run.HighValue,
			Duration:   s.now().Sub(run.StartedAt),
		})
	}
	return report, nil
}

// ValidListings descarta los listings que no pasan la validacion de estructura.
func (s *PipelineService) ValidListings(in []domain.Listing) ([]domain.Listing, int) {
	out := make([]domain.Listing, 0, len(in))
	invalid := 0
	for _, l := range in {
		if err := s.ValidateListing(l); err != nil {
			invalid++
			s.logger.Warn("listing rejected", zap.String("address", l.Address), zap.Error(err))
			continue
		}
		out = append(out, l)
	}
	return out, invalid
}

func (s *PipelineService) ValidateListing(l domain.Listing) error {
	if err := s.validate.Struct(l); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}
	return nil
}

// ScoreAndPersist enriquece, puntua y guarda un lote. Los errores por listing se
// registran y cuentan; solo la cancelacion corta el lote.
func (s *PipelineService) ScoreAndPersist(ctx context.Context, listings []domain.Listing, scanRunID string) ([]domain.Opportunity, int, int, error) {
	enriched := s.enricher.EnrichAll(listings)
	opps, err := s.scorer.ScoreBatch(ctx, enriched)
	if err != nil {
		return nil, 0, 0, err
	}

	newCount, failures := 0, 0
	for i := range opps {
		if err := ctx.Err(); err != nil {
			return nil, 0, 0, err
		}
		now := s.now()
		res, err := s.listings.Upsert(ctx, opps[i].Listing, scanRunID, now)
		if err != nil {
			failures++
			s.logger.Error("persist listing", zap.String("address", opps[i].Listing.Address), zap.Error(err))
			continue
		}
		opps[i].Listing.ID = res.ID
		if res.Created {
			newCount++
		}
		if res.PricePoint != nil && res.PricePoint.Change != nil {
			s.logger.Info("price change detected",
				zap.String("address", opps[i].Listing.Address),
				zap.Float64("change", *res.PricePoint.Change),
			)
		}

		rec := opps[i].ToRecord(uuid.NewString(), scanRunID, s.opts.ModelVersion, now)
		if err := s.classifications.Create(ctx, rec); err != nil {
			failures++
			s.logger.Error("persist classification", zap.String("listing_id", res.ID), zap.Error(err))
		}
	}
	return opps, newCount, failures, nil
}
