package scoring

import (
	"math"
	"strings"
	"testing"
)

func f(v float64) *float64 { return &v }

func approx(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s: expected %.4f, got %.4f", name, want, got)
	}
}

func TestCalculateROI_ReferenceAcreLot(t *testing.T) {
	est := DefaultCalculator.CalculateROI(ROIInput{
		Address:       "123 Main St, Newton, MA",
		PurchasePrice: f(1_200_000),
		LotSize:       f(43_560),
		CurrentSqft:   f(4_000),
		Zoning:        strPtr("residential"),
	})

	approx(t, "buildable", est.BuildableSqft, 17_424, 1e-6)
	approx(t, "cost per sqft", est.ConstructionCostPerSqft, 300, 0)
	approx(t, "construction", est.TotalConstructionCost, 5_227_200, 1e-3)
	approx(t, "sale", est.EstimatedSalePrice, 7_840_800, 1e-3)
	approx(t, "gross", est.GrossProfit, 1_413_600, 1e-3)
	approx(t, "net", est.NetProfit, 1_060_200, 1e-3)
	approx(t, "roi", est.ROIPercentage, 16.4955, 1e-3)
	approx(t, "score", est.ROIScore, 20.62, 0.01)
	approx(t, "confidence", est.Confidence, 100, 0)

	want := "Buildable: 17,424 SF | Lot: 43,560 SF (0.4x) | Est. Sale: $7,840,800 | ROI: 16.5% | Confidence: 100%"
	if est.Reasoning != want {
		t.Fatalf("unexpected reasoning:\n got %q\nwant %q", est.Reasoning, want)
	}
}

func TestCalculateROI_SmallLotNearBreakEven(t *testing.T) {
	est := DefaultCalculator.CalculateROI(ROIInput{
		PurchasePrice: f(650_000),
		LotSize:       f(10_890),
		CurrentSqft:   f(2_000),
		Zoning:        strPtr("residential"),
	})
	approx(t, "buildable", est.BuildableSqft, 4_356, 1e-6)
	if est.ROIPercentage >= 5 {
		t.Fatalf("expected roi below 5%%, got %.2f", est.ROIPercentage)
	}
	if est.ROIScore >= 10 {
		t.Fatalf("expected low score, got %.2f", est.ROIScore)
	}
	if est.Confidence <= 90 {
		t.Fatalf("expected high confidence, got %.2f", est.Confidence)
	}
}

func TestCalculateROI_DenseZoningOutperformsResidential(t *testing.T) {
	base := ROIInput{PurchasePrice: f(650_000), LotSize: f(10_890), CurrentSqft: f(2_000)}

	dense := base
	dense.Zoning = strPtr("residential_dense")
	standard := base
	standard.Zoning = strPtr("residential")

	d := DefaultCalculator.CalculateROI(dense)
	s := DefaultCalculator.CalculateROI(standard)

	if d.BuildableSqft <= s.BuildableSqft {
		t.Fatalf("expected dense buildable > standard, got %.0f vs %.0f", d.BuildableSqft, s.BuildableSqft)
	}
	if d.ROIPercentage <= s.ROIPercentage {
		t.Fatalf("expected dense roi > standard, got %.2f vs %.2f", d.ROIPercentage, s.ROIPercentage)
	}
	if d.ROIScore <= s.ROIScore {
		t.Fatalf("expected dense score > standard, got %.2f vs %.2f", d.ROIScore, s.ROIScore)
	}
}

func TestCalculateROI_InvalidPrice(t *testing.T) {
	prices := map[string]*float64{
		"nil":      nil,
		"zero":     f(0),
		"negative": f(-10),
		"nan":      f(math.NaN()),
	}
	for name, price := range prices {
		t.Run(name, func(t *testing.T) {
			est := DefaultCalculator.CalculateROI(ROIInput{
				PurchasePrice: price,
				LotSize:       f(10_000),
				CurrentSqft:   f(2_000),
			})
			if est.Reasoning != "Cannot estimate ROI: Invalid purchase price" {
				t.Fatalf("unexpected reasoning %q", est.Reasoning)
			}
			assertZeroEstimate(t, est)
		})
	}
}

func TestCalculateROI_NoBuildablePotential(t *testing.T) {
	est := DefaultCalculator.CalculateROI(ROIInput{
		PurchasePrice: f(500_000),
		LotSize:       f(0),
		CurrentSqft:   nil,
		Zoning:        strPtr("residential"),
	})
	if est.Reasoning != "Cannot estimate ROI: No buildable potential detected" {
		t.Fatalf("unexpected reasoning %q", est.Reasoning)
	}
	assertZeroEstimate(t, est)
}

func TestCalculateROI_OverflowingInputs(t *testing.T) {
	cases := map[string]ROIInput{
		"huge lot":   {PurchasePrice: f(500_000), LotSize: f(1e307), Zoning: strPtr("residential")},
		"huge dense": {PurchasePrice: f(500_000), LotSize: f(math.MaxFloat64), Zoning: strPtr("multi-family")},
		"huge price": {PurchasePrice: f(math.MaxFloat64), LotSize: f(1e306), Zoning: strPtr("commercial")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			est := DefaultCalculator.CalculateROI(in)
			if est.Reasoning != "Cannot estimate ROI: Values out of range" {
				t.Fatalf("unexpected reasoning %q", est.Reasoning)
			}
			assertZeroEstimate(t, est)
			if strings.Contains(est.Reasoning, "Inf") || strings.Contains(est.Reasoning, "NaN") {
				t.Fatalf("non-finite value leaked into reasoning %q", est.Reasoning)
			}
		})
	}
}

func TestCalculateROI_FallsBackToCurrentSqft(t *testing.T) {
	est := DefaultCalculator.CalculateROI(ROIInput{
		PurchasePrice: f(750_000),
		CurrentSqft:   f(3_500),
		Zoning:        strPtr("residential"),
	})
	approx(t, "buildable", est.BuildableSqft, 4_200, 1e-6)
	approx(t, "confidence", est.Confidence, 80, 0)
	if strings.Contains(est.Reasoning, "Lot:") {
		t.Fatalf("expected no lot segment, got %q", est.Reasoning)
	}
	if !strings.Contains(est.Reasoning, "SF") {
		t.Fatalf("expected SF in reasoning, got %q", est.Reasoning)
	}
}

func TestCalculateROI_AdjustmentScalesConfidence(t *testing.T) {
	in := ROIInput{
		PurchasePrice: f(1_000_000),
		LotSize:       f(20_000),
		CurrentSqft:   f(2_000),
		Adjustment:    f(0.5),
	}
	est := DefaultCalculator.CalculateROI(in)
	approx(t, "confidence", est.Confidence, 50, 0)

	in.Adjustment = f(1.5)
	est = DefaultCalculator.CalculateROI(in)
	approx(t, "clamped confidence", est.Confidence, 100, 0)

	in.Adjustment = f(0)
	est = DefaultCalculator.CalculateROI(in)
	approx(t, "zero adjustment", est.Confidence, 0, 0)

	in.Adjustment = nil
	est = DefaultCalculator.CalculateROI(in)
	approx(t, "no adjustment", est.Confidence, 100, 0)
}

func TestCalculateROI_NegativeGrossIsNotTaxed(t *testing.T) {
	est := DefaultCalculator.CalculateROI(ROIInput{
		PurchasePrice: f(5_000_000),
		LotSize:       f(5_000),
		Zoning:        strPtr("residential"),
	})
	if est.GrossProfit >= 0 {
		t.Fatalf("expected a loss, got %.2f", est.GrossProfit)
	}
	if est.NetProfit != est.GrossProfit {
		t.Fatalf("expected net == gross on loss, got %.2f vs %.2f", est.NetProfit, est.GrossProfit)
	}
	if est.ROIScore != 0 {
		t.Fatalf("expected zero score on negative roi, got %.2f", est.ROIScore)
	}
}

func TestCalculateROI_TotalOverExtremeInputs(t *testing.T) {
	values := []*float64{nil, f(0), f(-1), f(1e-9), f(1e12), f(math.Inf(1)), f(math.NaN())}
	for _, price := range values {
		for _, lot := range values {
			for _, sqft := range values {
				est := DefaultCalculator.CalculateROI(ROIInput{PurchasePrice: price, LotSize: lot, CurrentSqft: sqft})
				if est.ROIScore < 0 || est.ROIScore > 100 || math.IsNaN(est.ROIScore) {
					t.Fatalf("roi score out of range: %v", est.ROIScore)
				}
				if est.Confidence < 0 || est.Confidence > 100 {
					t.Fatalf("confidence out of range: %v", est.Confidence)
				}
				for _, v := range []float64{est.BuildableSqft, est.TotalConstructionCost, est.EstimatedSalePrice, est.NetProfit, est.ROIPercentage} {
					if math.IsNaN(v) || math.IsInf(v, 0) {
						t.Fatalf("non-finite field in %+v", est)
					}
				}
				if est.BuildableSqft < 0 {
					t.Fatalf("negative buildable: %v", est.BuildableSqft)
				}
				if est.BuildableSqft == 0 && (est.NetProfit != 0 || est.Confidence != 0) {
					t.Fatalf("zero buildable must zero the estimate, got %+v", est)
				}
			}
		}
	}
}

func TestEstimateBuildableArea_ByCategory(t *testing.T) {
	lot := f(10_000)
	cases := map[ZoningCategory]float64{
		ZoningResidential:      4_000,
		ZoningResidentialDense: 6_000,
		ZoningMixedUse:         8_000,
		ZoningCommercial:       10_000,
		ZoningIndustrial:       4_000,
		ZoningUnknown:          4_000,
	}
	for cat, want := range cases {
		approx(t, string(cat), DefaultCalculator.EstimateBuildableArea(lot, f(1_500), cat), want, 1e-6)
	}
}

func TestEstimateBuildableArea_MonotonicInLot(t *testing.T) {
	prev := 0.0
	for lot := 1.0; lot <= 100_000; lot *= 3 {
		got := DefaultCalculator.EstimateBuildableArea(f(lot), nil, ZoningMixedUse)
		if got < prev {
			t.Fatalf("buildable decreased at lot %.0f: %.2f < %.2f", lot, got, prev)
		}
		prev = got
	}
}

func TestCostAndValue_Tables(t *testing.T) {
	cases := []struct {
		cat        ZoningCategory
		cost, sale float64
	}{
		{ZoningResidential, 300, 450},
		{ZoningResidentialDense, 350, 475},
		{ZoningMixedUse, 325, 420},
		{ZoningCommercial, 280, 350},
		{ZoningIndustrial, 300, 300},
		{ZoningUnknown, 300, 300},
	}
	for _, tc := range cases {
		per, total, sale := DefaultCalculator.CostAndValue(100, tc.cat)
		approx(t, string(tc.cat)+" per sqft", per, tc.cost, 0)
		approx(t, string(tc.cat)+" total", total, tc.cost*100, 1e-9)
		approx(t, string(tc.cat)+" sale", sale, tc.sale*100, 1e-9)
	}
}

func TestProfit_ZeroInvestment(t *testing.T) {
	gross, net, roi := DefaultCalculator.Profit(0, 0, 0)
	if gross != 0 || net != 0 || roi != 0 {
		t.Fatalf("expected zeros, got %v %v %v", gross, net, roi)
	}
}

func TestNormalizeROIScore_Breakpoints(t *testing.T) {
	cases := []struct{ roi, want float64 }{
		{-50, 0},
		{0, 0},
		{10, 12.5},
		{20, 25},
		{35, 37.5},
		{50, 50},
		{75, 62.5},
		{100, 75},
		{150, 87.5},
		{200, 100},
		{10_000, 100},
		{math.Inf(1), 100},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		approx(t, "score", NormalizeROIScore(tc.roi), tc.want, 1e-9)
	}
}

func TestNormalizeROIScore_Monotonic(t *testing.T) {
	prev := NormalizeROIScore(-10)
	for roi := -10.0; roi <= 300; roi += 0.5 {
		got := NormalizeROIScore(roi)
		if got < prev {
			t.Fatalf("score decreased at roi %.1f", roi)
		}
		prev = got
	}
}

func TestConfidence(t *testing.T) {
	approx(t, "no data unknown zoning", Confidence(false, false, ZoningUnknown, 1), 50, 0)
	approx(t, "all data", Confidence(true, true, ZoningResidential, 1), 100, 0)
	approx(t, "negative adjustment clamps", Confidence(true, true, ZoningResidential, -1), 0, 0)
	if Confidence(true, true, ZoningResidential, 1) <= Confidence(false, false, ZoningUnknown, 1)+30 {
		t.Fatalf("expected complete data to add more than 30 points")
	}
}

func TestNewCalculator_OverridesAreIsolated(t *testing.T) {
	tables := DefaultTables()
	calc := NewCalculator(tables.WithOverrides(nil, map[ZoningCategory]float64{ZoningResidential: 400}, nil))
	tables.ConstructionCosts[ZoningResidential] = 1

	per, _, _ := calc.CostAndValue(1, ZoningResidential)
	if per != 400 {
		t.Fatalf("expected override 400, got %v", per)
	}
	if DefaultCalculator.Tables().ConstructionCosts[ZoningResidential] != 300 {
		t.Fatalf("default tables were mutated")
	}
}

func TestTablesValidate(t *testing.T) {
	if err := DefaultTables().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	bad := DefaultTables().WithOverrides(map[ZoningCategory]float64{ZoningMixedUse: -0.1}, nil, nil)
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected negative ratio to fail validation")
	}
	tax := DefaultTables()
	tax.TaxRate = 1.5
	if err := tax.Validate(); err == nil {
		t.Fatalf("expected tax rate > 1 to fail validation")
	}
}

func assertZeroEstimate(t *testing.T, est ROIEstimate) {
	t.Helper()
	if est.BuildableSqft != 0 || est.TotalConstructionCost != 0 || est.EstimatedSalePrice != 0 ||
		est.GrossProfit != 0 || est.NetProfit != 0 || est.ROIPercentage != 0 || est.ROIScore != 0 ||
		est.Confidence != 0 || est.ConstructionCostPerSqft != 0 {
		t.Fatalf("expected zeroed estimate, got %+v", est)
	}
}
