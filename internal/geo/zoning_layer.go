package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	shp "github.com/jonas-p/go-shp"
)

// ErrAttributeNotFound se devuelve cuando el DBF no tiene la columna de zonificacion pedida.
var ErrAttributeNotFound = errors.New("zoning attribute not found in shapefile")

// Feature es un poligono de zonificacion (puede tener varias partes) con su codigo.
type Feature struct {
	Zone  string
	Rings [][][2]float64 // cada anillo es una lista de [lat, lon]

	minLat, minLon, maxLat, maxLon float64
}

// NewFeature calcula el bounding box de los anillos.
func NewFeature(zone string, rings [][][2]float64) Feature {
	f := Feature{
		Zone:   zone,
		Rings:  rings,
		minLat: math.MaxFloat64,
		minLon: math.MaxFloat64,
		maxLat: -math.MaxFloat64,
		maxLon: -math.MaxFloat64,
	}
	for _, ring := range rings {
		for _, pt := range ring {
			f.minLat = math.Min(f.minLat, pt[0])
			f.maxLat = math.Max(f.maxLat, pt[0])
			f.minLon = math.Min(f.minLon, pt[1])
			f.maxLon = math.Max(f.maxLon, pt[1])
		}
	}
	return f
}

// Contains descarta por bbox y luego aplica paridad par-impar sobre todos los anillos,
// asi un punto dentro de un hueco queda afuera.
func (f Feature) Contains(lat, lon float64) bool {
	if lat < f.minLat || lat > f.maxLat || lon < f.minLon || lon > f.maxLon {
		return false
	}
	inside := false
	for _, ring := range f.Rings {
		if pointInRing(lat, lon, ring) {
			inside = !inside
		}
	}
	return inside
}

// ZoningLayer resuelve coordenadas a codigo de zonificacion.
type ZoningLayer struct {
	features []Feature
}

func NewZoningLayer(features []Feature) *ZoningLayer {
	return &ZoningLayer{features: features}
}

// LoadZoningLayer lee un shapefile de poligonos y toma el codigo de la columna attribute.
func LoadZoningLayer(path, attribute string) (*ZoningLayer, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer r.Close()

	col := -1
	for i, f := range r.Fields() {
		if strings.EqualFold(cleanAttr(f.String()), attribute) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%s: %w: %s", path, ErrAttributeNotFound, attribute)
	}

	var features []Feature
	for r.Next() {
		idx, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}
		zone := cleanAttr(r.ReadAttribute(idx, col))
		if zone == "" {
			continue
		}
		features = append(features, NewFeature(zone, splitParts(poly)))
	}
	return NewZoningLayer(features), nil
}

// Lookup devuelve el codigo del primer poligono que contiene el punto.
func (l *ZoningLayer) Lookup(lat, lon float64) (string, bool) {
	if l == nil {
		return "", false
	}
	for _, f := range l.features {
		if f.Contains(lat, lon) {
			return f.Zone, true
		}
	}
	return "", false
}

func (l *ZoningLayer) Len() int {
	if l == nil {
		return 0
	}
	return len(l.features)
}

func splitParts(poly *shp.Polygon) [][][2]float64 {
	n := len(poly.Parts)
	rings := make([][][2]float64, 0, n)
	for i := 0; i < n; i++ {
		start := poly.Parts[i]
		end := int32(len(poly.Points))
		if i+1 < n {
			end = poly.Parts[i+1]
		}
		ring := make([][2]float64, 0, end-start)
		for _, pt := range poly.Points[start:end] {
			ring = append(ring, [2]float64{pt.Y, pt.X})
		}
		rings = append(rings, ring)
	}
	return rings
}

func pointInRing(lat, lon float64, ring [][2]float64) bool {
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		yi, xi := ring[i][0], ring[i][1]
		yj, xj := ring[j][0], ring[j][1]
		if (yi > lat) != (yj > lat) && lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Los campos DBF vienen con padding de espacios o NUL.
func cleanAttr(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}
