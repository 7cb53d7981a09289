package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"teardown-leads/internal/domain"
	"teardown-leads/internal/llm"
	"teardown-leads/internal/scoring"
)

const classifierSystemPrompt = `You are a real estate development opportunity classifier.
Your task is to analyze property listings and determine if they represent good development or teardown opportunities.

Look for indicators such as:
- Keywords like "tear down", "builder special", "contractor special", "as-is", "development opportunity", "fixer-upper"
- Old buildings (pre-1960) on large lots
- High lot-to-building ratios (lot much larger than building)
- High land value relative to total value
- Properties described as needing significant work
- Large lots in desirable areas
- Underbuilt properties (small house on large lot)

Classify each property as:
- "development" - Strong teardown/development opportunity
- "potential" - Possible opportunity but needs more investigation
- "no" - Not a development opportunity

Provide your response in JSON format with these fields:
{
  "label": "development" | "potential" | "no",
  "confidence": 0.0 to 1.0,
  "explanation": "Brief explanation of your reasoning"
}`

const maxDescriptionChars = 500

// Classifier asigna etiqueta y confianza a un listing. Nunca falla: los errores
// se degradan a una clasificacion unknown.
type Classifier interface {
	Classify(ctx context.Context, listing domain.Listing) scoring.Classification
}

// ClassifierService clasifica listings con el LLM y cachea por contexto.
type ClassifierService struct {
	llmClient llm.LLMClient
	cache     ClassificationCache
	logger    *zap.Logger
}

func NewClassifierService(llmClient llm.LLMClient, cache ClassificationCache, logger *zap.Logger) *ClassifierService {
	if cache == nil {
		cache = noopClassificationCache{}
	}
	return &ClassifierService{
		llmClient: llmClient,
		cache:     cache,
		logger:    logger,
	}
}

func (s *ClassifierService) Classify(ctx context.Context, listing domain.Listing) scoring.Classification {
	promptCtx := BuildClassificationContext(listing)
	key := contextKey(promptCtx)

	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached
	}

	userPrompt := "Analyze this property and determine if it's a development opportunity:\n\n" +
		promptCtx + "\n\nRespond in JSON format only."

	raw, err := s.llmClient.Generate(ctx, classifierSystemPrompt, userPrompt)
	if err != nil {
		s.logger.Warn("classification failed", zap.String("address", listing.Address), zap.Error(err))
		return scoring.FailedClassification(fmt.Errorf("llm generate: %w", err))
	}

	c, err := parseClassification(raw)
	if err != nil {
		s.logger.Warn("classification parse failed", zap.String("address", listing.Address), zap.Error(err))
		return scoring.FailedClassification(err)
	}

	s.cache.Set(ctx, key, c)
	return c
}

var contextPrinter = message.NewPrinter(language.English)

// BuildClassificationContext arma una linea "Clave: valor" por dato presente.
func BuildClassificationContext(l domain.Listing) string {
	var parts []string
	add := func(s string) { parts = append(parts, s) }

	if l.Address != "" {
		add("Address: " + l.Address)
	}
	if p := l.PurchasePrice(); p != nil && *p > 0 {
		add(contextPrinter.Sprintf("Price: $%.0f", *p))
	}
	if v := l.Bedrooms; v != nil && *v > 0 {
		add(fmt.Sprintf("Bedrooms: %g", *v))
	}
	if v := l.Bathrooms; v != nil && *v > 0 {
		add(fmt.Sprintf("Bathrooms: %g", *v))
	}
	if v := l.Sqft; v != nil && *v > 0 {
		add(contextPrinter.Sprintf("Square Footage: %.0f sqft", *v))
	}
	if v := l.LotSize; v != nil && *v > 0 {
		add(contextPrinter.Sprintf("Lot Size: %.0f sqft", *v))
	}
	if v := l.YearBuilt; v != nil && *v > 0 {
		add(fmt.Sprintf("Year Built: %d", *v))
	}
	m := l.Metrics
	if v := m.BuildingAge; v != nil && *v > 0 {
		add(fmt.Sprintf("Building Age: %d years", *v))
	}
	if l.Zoning != nil && strings.TrimSpace(*l.Zoning) != "" {
		add("Zoning: " + strings.TrimSpace(*l.Zoning))
	}
	if v := m.PricePerSqft; v != nil && *v > 0 {
		add(fmt.Sprintf("Price per sqft: $%.2f", *v))
	}
	if v := m.LotToBuildingRatio; v != nil && *v > 0 {
		add(fmt.Sprintf("Lot to Building Ratio: %.2f", *v))
	}
	if v := m.LandValueRatio; v != nil && *v > 0 {
		add(fmt.Sprintf("Land Value Ratio: %.2f%%", *v*100))
	}
	if l.Notes != "" {
		add("Notes: " + l.Notes)
	}
	if l.Description != "" {
		add("Description: " + truncateRunes(l.Description, maxDescriptionChars))
	}
	if l.Snippet != "" {
		add("Snippet: " + l.Snippet)
	}
	if l.Status != "" {
		add("Status: " + l.Status)
	}
	return strings.Join(parts, "\n")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func contextKey(promptCtx string) string {
	sum := sha256.Sum256([]byte(promptCtx))
	return hex.EncodeToString(sum[:])
}
