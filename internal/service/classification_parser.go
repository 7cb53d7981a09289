package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"teardown-leads/internal/scoring"
)

var (
	fenceStart = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEnd   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// cleanLLMJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func cleanLLMJSONResponse(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "\uFEFF")
	s = fenceStart.ReplaceAllString(s, "")
	s = fenceEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// firstJSONObject devuelve el primer objeto {...} balanceado, respetando strings y escapes.
func firstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(input); i++ {
		ch := input[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

type rawClassification struct {
	Label       string   `json:"label"`
	Confidence  *float64 `json:"confidence"`
	Explanation string   `json:"explanation"`
}

// parseClassification interpreta la respuesta del modelo. La etiqueta se normaliza
// y la confianza se acota a [0,1].
func parseClassification(raw string) (scoring.Classification, error) {
	cleaned := cleanLLMJSONResponse(raw)
	if cleaned == "" {
		return scoring.Classification{}, errors.New("empty classification response")
	}

	candidates := []string{cleaned}
	if obj := firstJSONObject(cleaned); obj != "" && obj != cleaned {
		candidates = append(candidates, obj)
	}

	var lastErr error
	for _, c := range candidates {
		var rc rawClassification
		if err := json.Unmarshal([]byte(c), &rc); err != nil {
			lastErr = err
			continue
		}
		out := scoring.Classification{
			Label:       scoring.NormalizeLabel(rc.Label),
			Explanation: strings.TrimSpace(rc.Explanation),
		}
		if rc.Confidence != nil {
			out.Confidence = clampUnit(*rc.Confidence)
		}
		return out, nil
	}
	return scoring.Classification{}, fmt.Errorf("parse classification: %w", lastErr)
}

func clampUnit(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
