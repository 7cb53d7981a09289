package repository

import (
	"strings"

	"teardown-leads/internal/scoring"
)

// prefixed antepone un alias de tabla a una lista de columnas separada por comas.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func scoringLabel(s string) scoring.Label {
	return scoring.NormalizeLabel(s)
}
