package scoring

import "strings"

// ZoningCategory es el conjunto cerrado de categorias que entiende el motor.
type ZoningCategory string

const (
	ZoningResidential      ZoningCategory = "residential"
	ZoningResidentialDense ZoningCategory = "residential_dense"
	ZoningMixedUse         ZoningCategory = "mixed_use"
	ZoningCommercial       ZoningCategory = "commercial"
	ZoningIndustrial       ZoningCategory = "industrial"
	ZoningUnknown          ZoningCategory = "unknown"
)

// AllZoningCategories enumera las categorias validas en orden estable.
var AllZoningCategories = []ZoningCategory{
	ZoningResidential,
	ZoningResidentialDense,
	ZoningMixedUse,
	ZoningCommercial,
	ZoningIndustrial,
	ZoningUnknown,
}

// ParseZoningCategory reconoce el nombre canonico de una categoria (no texto libre).
func ParseZoningCategory(s string) (ZoningCategory, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllZoningCategories {
		if string(c) == key {
			return c, true
		}
	}
	return "", false
}

// ClassifyZoning mapea texto libre de zonificacion a una categoria.
// Sin texto se asume residencial. El orden de las reglas importa: "commercial"
// cae en MixedUse antes de llegar a Commercial, de modo que ZoningCommercial
// nunca sale de texto libre y solo aplica cuando el llamador la pasa explicita.
func ClassifyZoning(text *string) ZoningCategory {
	if text == nil {
		return ZoningResidential
	}
	z := strings.ToLower(strings.TrimSpace(*text))
	if z == "" {
		return ZoningResidential
	}

	switch {
	case strings.Contains(z, "dense"), strings.Contains(z, "multi"):
		return ZoningResidentialDense
	case strings.Contains(z, "mixed"), strings.Contains(z, "commercial"):
		return ZoningMixedUse
	case strings.Contains(z, "industrial"):
		return ZoningIndustrial
	default:
		return ZoningResidential
	}
}
