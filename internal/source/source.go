package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"teardown-leads/internal/domain"
)

// ErrNoSource indica que no hay ninguna fuente de listings configurada.
var ErrNoSource = errors.New("no listing source configured")

// ListingSource recolecta listings crudos para una busqueda.
type ListingSource interface {
	Collect(ctx context.Context, query, location string) ([]domain.Listing, error)
}

// FileSource lee un archivo JSON con un arreglo de listings ya recolectados.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Collect filtra por location (substring sobre direccion o ciudad) cuando se indica.
// query no aplica a un archivo estatico.
func (s *FileSource) Collect(ctx context.Context, _ string, location string) ([]domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.path) == "" {
		return nil, ErrNoSource
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read listings file: %w", err)
	}
	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("decode listings file: %w", err)
	}
	for i := range listings {
		if listings[i].Source == "" {
			listings[i].Source = "file"
		}
	}
	return filterByLocation(listings, location), nil
}

func filterByLocation(listings []domain.Listing, location string) []domain.Listing {
	city := strings.ToLower(strings.TrimSpace(strings.Split(location, ",")[0]))
	if city == "" {
		return listings
	}
	out := listings[:0]
	for _, l := range listings {
		if strings.Contains(strings.ToLower(l.Address), city) || strings.EqualFold(l.City, city) {
			out = append(out, l)
		}
	}
	return out
}

// StaticSource devuelve siempre los mismos listings, sin filtrar. Sirve para inyectar
// listings fijos en el pipeline; cada llamada entrega una copia.
type StaticSource []domain.Listing

func (s StaticSource) Collect(ctx context.Context, _, _ string) ([]domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Listing, len(s))
	copy(out, s)
	return out, nil
}
