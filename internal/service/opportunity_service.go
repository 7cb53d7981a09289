package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"teardown-leads/internal/domain"
	"teardown-leads/internal/scoring"
)

const highROIScore = 70

// OpportunityService combina clasificacion, development score y ROI por listing.
type OpportunityService struct {
	classifier  Classifier
	calculator  *scoring.Calculator
	logger      *zap.Logger
	concurrency int
}

func NewOpportunityService(classifier Classifier, calculator *scoring.Calculator, concurrency int, logger *zap.Logger) *OpportunityService {
	if calculator == nil {
		calculator = scoring.DefaultCalculator
	}
	if concurrency < 1 {
		concurrency = 5
	}
	return &OpportunityService{
		classifier:  classifier,
		calculator:  calculator,
		logger:      logger,
		concurrency: concurrency,
	}
}

// EstimateROI es el borde de error del calculador: un panic o un resultado no
// finito se devuelve como error para que el llamador marque el ROI como no disponible.
func (s *OpportunityService) EstimateROI(in scoring.ROIInput) (est scoring.ROIEstimate, err error) {
	defer func() {
		if r := recover(); r != nil {
			est = scoring.ROIEstimate{}
			err = fmt.Errorf("roi calculation panic: %v", r)
		}
	}()
	est = s.calculator.CalculateROI(in)
	for _, v := range []float64{est.BuildableSqft, est.TotalConstructionCost, est.EstimatedSalePrice, est.NetProfit, est.ROIPercentage} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return scoring.ROIEstimate{}, errors.New("roi calculation produced a non-finite value")
		}
	}
	return est, nil
}

// Score clasifica y puntua un listing ya enriquecido.
func (s *OpportunityService) Score(ctx context.Context, l domain.Listing) domain.Opportunity {
	c := s.classifier.Classify(ctx, l)
	devScore := scoring.DevelopmentScore(c, l.Metrics)

	opp := domain.Opportunity{
		Listing:          l,
		Classification:   c,
		DevelopmentScore: devScore,
		Tier:             scoring.ScoreTier(devScore),
	}

	est, err := s.EstimateROI(l.ROIInput())
	if err != nil {
		s.logger.Error("roi calculation failed", zap.String("address", l.Address), zap.Error(err))
		opp.ROIError = err.Error()
		return opp
	}
	opp.ROI = &est
	if est.ROIScore >= highROIScore {
		s.logger.Info("high roi opportunity",
			zap.String("address", l.Address),
			zap.Float64("roi_percentage", est.ROIPercentage),
			zap.Float64("roi_score", est.ROIScore),
		)
	}
	return opp
}

// ScoreBatch puntua en paralelo con concurrencia acotada y preserva el orden de entrada.
func (s *OpportunityService) ScoreBatch(ctx context.Context, listings []domain.Listing) ([]domain.Opportunity, error) {
	out := make([]domain.Opportunity, len(listings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range listings {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.Score(gctx, listings[i])
			if (i+1)%10 == 0 {
				s.logger.Info("scoring progress", zap.Int("done", i+1), zap.Int("total", len(listings)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score batch: %w", err)
	}
	return out, nil
}

// FilterOpportunities deja development (y potential si se pide) con score >= minScore,
// ordenadas de mayor a menor.
func FilterOpportunities(opps []domain.Opportunity, minScore float64, includePotential bool) []domain.Opportunity {
	var out []domain.Opportunity
	for _, o := range opps {
		switch o.Classification.Label {
		case scoring.LabelDevelopment:
		case scoring.LabelPotential:
			if !includePotential {
				continue
			}
		default:
			continue
		}
		if o.DevelopmentScore >= minScore {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DevelopmentScore > out[j].DevelopmentScore
	})
	return out
}
