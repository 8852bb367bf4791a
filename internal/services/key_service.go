// Package services – KeyService
//
// KeyService exposes the stateless key operations (build, validate, parse,
// diff, analyze) to the HTTP layer and the CLI. It enforces the batch size
// limit, records Prometheus counters and wraps every call in a span.
package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-promo-backend/internal/analysis"
	"github.com/tbourn/go-promo-backend/internal/diff"
	"github.com/tbourn/go-promo-backend/internal/domain"
	"github.com/tbourn/go-promo-backend/internal/keys"
)

// KeyValidation is the validity verdict for one key.
type KeyValidation struct {
	Key   string `json:"key"`
	Valid bool   `json:"valid"`
}

// KeyService runs key generation, diffing and analysis over request batches.
type KeyService struct {
	// MaxBatch caps the number of discounts per call; 0 disables the cap.
	MaxBatch int
}

// NewKeyService constructs a KeyService.
func NewKeyService(maxBatch int) *KeyService {
	return &KeyService{MaxBatch: maxBatch}
}

func (s *KeyService) checkBatch(n int) error {
	if s.MaxBatch > 0 && n > s.MaxBatch {
		return ErrTooManyDiscounts
	}
	return nil
}

// BuildKeys returns the unique key of every discount, in input order, and
// the number of keys that needed a collision index.
func (s *KeyService) BuildKeys(ctx context.Context, discounts []domain.Discount) ([]string, int, error) {
	_, span := otel.Tracer("services/KeyService").Start(ctx, "BuildKeys",
		trace.WithAttributes(attribute.Int("batch.size", len(discounts))),
	)
	defer span.End()

	if err := s.checkBatch(len(discounts)); err != nil {
		return nil, 0, err
	}
	out, collisions := keys.BuildUniqueKeysWithStats(discounts)
	observeKeys(len(out), collisions)
	span.SetAttributes(attribute.Int("keys.collisions", collisions))
	return out, collisions, nil
}

// Validate checks every key against the key format.
func (s *KeyService) Validate(ctx context.Context, ks []string) []KeyValidation {
	_, span := otel.Tracer("services/KeyService").Start(ctx, "Validate",
		trace.WithAttributes(attribute.Int("keys.count", len(ks))),
	)
	defer span.End()

	out := make([]KeyValidation, len(ks))
	for i, k := range ks {
		out[i] = KeyValidation{Key: k, Valid: keys.IsValidKey(k)}
	}
	return out
}

// Parse decomposes a valid key. Keys failing IsValidKey return ErrInvalidKey.
func (s *KeyService) Parse(ctx context.Context, key string) (keys.ParsedKey, error) {
	_, span := otel.Tracer("services/KeyService").Start(ctx, "Parse")
	defer span.End()

	if !keys.IsValidKey(key) {
		return keys.ParsedKey{}, ErrInvalidKey
	}
	return keys.ParseKey(key), nil
}

// Diff compares two batches and renders the notification text for source.
// An empty notification means nothing changed.
func (s *KeyService) Diff(ctx context.Context, source string, previous, current []domain.Discount) (diff.EnhancedResult, string, error) {
	_, span := otel.Tracer("services/KeyService").Start(ctx, "Diff",
		trace.WithAttributes(
			attribute.Int("batch.previous", len(previous)),
			attribute.Int("batch.current", len(current)),
		),
	)
	defer span.End()

	if err := s.checkBatch(max(len(previous), len(current))); err != nil {
		return diff.EnhancedResult{}, "", err
	}
	r := diff.CalculateEnhanced(previous, current)
	observeDiff(len(r.Added), len(r.Removed), len(r.ValidityChanged))
	return r, diff.FormatNotification(source, r), nil
}

// Analyze returns the uniqueness and length diagnostics of a batch.
func (s *KeyService) Analyze(ctx context.Context, discounts []domain.Discount) (analysis.Report, error) {
	_, span := otel.Tracer("services/KeyService").Start(ctx, "Analyze",
		trace.WithAttributes(attribute.Int("batch.size", len(discounts))),
	)
	defer span.End()

	if err := s.checkBatch(len(discounts)); err != nil {
		return analysis.Report{}, err
	}
	return analysis.Analyze(discounts), nil
}
