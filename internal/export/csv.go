package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"teardown-leads/internal/domain"
)

const notAvailable = "N/A"

var csvHeader = []string{
	"address", "city", "price", "beds", "baths", "sqft", "lot_size", "year_built", "zoning",
	"label", "development_score", "tier", "confidence", "explanation",
	"buildable_sqft", "estimated_profit", "roi_percentage", "roi_score", "roi_confidence", "roi_reasoning",
	"latitude", "longitude", "url", "source",
}

// WriteCSV escribe una fila por oportunidad; los valores faltantes salen como "N/A".
func WriteCSV(w io.Writer, opps []domain.Opportunity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, o := range opps {
		if err := cw.Write(csvRow(o)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(o domain.Opportunity) []string {
	l := o.Listing
	row := []string{
		l.Address,
		orNA(l.City),
		num(l.PurchasePrice(), 0),
		num(l.Bedrooms, -1),
		num(l.Bathrooms, -1),
		num(l.Sqft, 0),
		num(l.LotSize, 0),
		integer(l.YearBuilt),
		str(l.Zoning),
		string(o.Classification.Label),
		strconv.FormatFloat(o.DevelopmentScore, 'f', 2, 64),
		o.Tier,
		strconv.FormatFloat(o.Classification.Confidence, 'f', 2, 64),
		orNA(o.Classification.Explanation),
	}
	if roi := o.ROI; roi != nil && roi.BuildableSqft > 0 {
		row = append(row,
			strconv.FormatFloat(roi.BuildableSqft, 'f', 0, 64),
			strconv.FormatFloat(roi.NetProfit, 'f', 0, 64),
			strconv.FormatFloat(roi.ROIPercentage, 'f', 2, 64),
			strconv.FormatFloat(roi.ROIScore, 'f', 2, 64),
			strconv.FormatFloat(roi.Confidence, 'f', 0, 64),
			roi.Reasoning,
		)
	} else {
		reason := notAvailable
		switch {
		case roi != nil:
			reason = roi.Reasoning
		case o.ROIError != "":
			reason = "ROI calculation failed: " + o.ROIError
		}
		row = append(row, notAvailable, notAvailable, notAvailable, notAvailable, notAvailable, reason)
	}
	return append(row,
		num(l.Latitude, 6),
		num(l.Longitude, 6),
		orNA(l.URL),
		orNA(l.Source),
	)
}

// num formatea con prec decimales; prec < 0 usa la representacion minima.
func num(v *float64, prec int) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func integer(v *int) string {
	if v == nil {
		return notAvailable
	}
	return strconv.Itoa(*v)
}

func str(v *string) string {
	if v == nil {
		return notAvailable
	}
	return orNA(*v)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
