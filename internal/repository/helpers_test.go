package repository

import (
	"errors"
	"testing"
	"time"

	"teardown-leads/internal/scoring"
)

func TestPrefixed(t *testing.T) {
	got := prefixed("l", "\n\tid, address,\n\tcity")
	if got != "l.id, l.address, l.city" {
		t.Fatalf("unexpected columns %q", got)
	}
}

type fakeRows struct {
	rows [][]interface{}
	pos  int
	err  error
}

func (f *fakeRows) Next() bool {
	f.pos++
	return f.pos <= len(f.rows)
}

func (f *fakeRows) Scan(dest ...interface{}) error {
	row := f.rows[f.pos-1]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *float64:
			*d = v.(float64)
		case **float64:
			if v != nil {
				x := v.(float64)
				*d = &x
			}
		case **int:
			if v != nil {
				x := v.(int)
				*d = &x
			}
		case **string:
			if v != nil {
				x := v.(string)
				*d = &x
			}
		case *time.Time:
			*d = v.(time.Time)
		default:
			if v != nil {
				if s, ok := v.(string); ok {
					if err := scanNull(d, s); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (f *fakeRows) Err() error { return f.err }
func (f *fakeRows) Close()     {}

func scanNull(d interface{}, s string) error {
	type scanner interface{ Scan(interface{}) error }
	sc, ok := d.(scanner)
	if !ok {
		return errors.New("unsupported destination")
	}
	return sc.Scan(s)
}

func TestScanListings(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := &fakeRows{rows: [][]interface{}{{
		"id-1", "12 Elm St", "Newton", "MA", nil,
		950000.0, nil, 3.0, 1.5, 1800.0, 21780.0,
		1948, "SR-2", nil, nil, 42.33, -71.21,
		"Builder special", "for_sale", nil, "file",
		now, now,
	}}}

	listings, err := scanListings(rows)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	l := listings[0]
	if l.City != "Newton" || l.ZipCode != "" || l.Description != "Builder special" {
		t.Fatalf("unexpected text fields %+v", l)
	}
	if l.Price == nil || *l.Price != 950000 || l.LastPrice != nil {
		t.Fatalf("unexpected prices %v %v", l.Price, l.LastPrice)
	}
	if l.YearBuilt == nil || *l.YearBuilt != 1948 || l.Zoning == nil || *l.Zoning != "SR-2" {
		t.Fatalf("unexpected year/zoning")
	}
}

func TestScanListings_PropagatesRowsError(t *testing.T) {
	rows := &fakeRows{err: errors.New("conn reset")}
	if _, err := scanListings(rows); err == nil {
		t.Fatalf("expected rows error")
	}
}

func TestScanClassification_NormalizesLabel(t *testing.T) {
	now := time.Now()
	rows := &fakeRows{rows: [][]interface{}{{
		"c1", "l1", nil, "Development", 0.8, "old house", 72.5,
		17424.0, 1060200.0, 16.5, 20.62, 100.0,
		"Buildable: 17,424 SF", "gpt-4o-mini", now,
	}}}
	rows.Next()
	rec, err := scanClassification(rows.Scan)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Label != scoring.LabelDevelopment {
		t.Fatalf("expected normalized label, got %q", rec.Label)
	}
	if rec.Confidence != 0.8 || rec.DevelopmentScore != 72.5 {
		t.Fatalf("unexpected scores %+v", rec)
	}
	if rec.ScanRunID != "" || rec.EstimatedProfit == nil || *rec.EstimatedProfit != 1060200 {
		t.Fatalf("unexpected record %+v", rec)
	}
}
