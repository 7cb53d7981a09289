package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"teardown-leads/internal/domain"
)

// Result lista los archivos generados por una corrida.
type Result struct {
	CSVPath     string   `json:"csv_path"`
	GeoJSONPath string   `json:"geojson_path"`
	MapFeatures int      `json:"map_features"`
	Uploaded    []string `json:"uploaded,omitempty"`
}

// Exporter escribe CSV y GeoJSON en disco y, si hay uploader, los sube.
type Exporter struct {
	dir      string
	uploader Uploader
	logger   *zap.Logger
}

func NewExporter(dir string, uploader Uploader, logger *zap.Logger) *Exporter {
	return &Exporter{dir: dir, uploader: uploader, logger: logger}
}

// Export nombra los archivos con el tipo de corrida y la fecha. Un fallo de upload
// se registra pero no invalida los archivos locales.
func (e *Exporter) Export(ctx context.Context, runType string, opps []domain.Opportunity, at time.Time) (Result, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create export dir: %w", err)
	}
	stamp := at.UTC().Format("20060102_150405")
	base := fmt.Sprintf("opportunities_%s_%s", runType, stamp)

	var csvBuf bytes.Buffer
	if err := WriteCSV(&csvBuf, opps); err != nil {
		return Result{}, err
	}
	var geoBuf bytes.Buffer
	n, err := WriteGeoJSON(&geoBuf, opps)
	if err != nil {
		return Result{}, fmt.Errorf("write geojson: %w", err)
	}

	res := Result{
		CSVPath:     filepath.Join(e.dir, base+".csv"),
		GeoJSONPath: filepath.Join(e.dir, base+".geojson"),
		MapFeatures: n,
	}
	if err := os.WriteFile(res.CSVPath, csvBuf.Bytes(), 0o644); err != nil {
		return Result{}, fmt.Errorf("write csv file: %w", err)
	}
	if err := os.WriteFile(res.GeoJSONPath, geoBuf.Bytes(), 0o644); err != nil {
		return Result{}, fmt.Errorf("write geojson file: %w", err)
	}

	if e.uploader == nil {
		return res, nil
	}
	uploads := []struct {
		key, contentType string
		data             []byte
	}{
		{"exports/" + base + ".csv", "text/csv", csvBuf.Bytes()},
		{"maps/" + base + ".geojson", "application/geo+json", geoBuf.Bytes()},
	}
	for _, u := range uploads {
		key, err := e.uploader.Upload(ctx, u.key, u.contentType, u.data)
		if err != nil {
			e.logger.Warn("export upload failed", zap.String("key", u.key), zap.Error(err))
			continue
		}
		res.Uploaded = append(res.Uploaded, key)
	}
	return res, nil
}
