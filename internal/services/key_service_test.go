package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-promo-backend/internal/domain"
)

func pct(source string, value float64, from, until string) domain.Discount {
	return domain.Discount{
		Source:     source,
		Discount:   domain.DiscountValue{Type: domain.TypePercentage, Value: value},
		ValidFrom:  from,
		ValidUntil: until,
	}
}

func TestKeyService_BuildKeys(t *testing.T) {
	s := NewKeyService(0)
	d := pct("coto", 15, "2025-04-26", "2025-04-27")

	ks, collisions, err := s.BuildKeys(context.Background(), []domain.Discount{d, d})
	if err != nil {
		t.Fatalf("BuildKeys: %v", err)
	}
	if len(ks) != 2 || ks[0] != "coto-porcentaje-15-0425-0426" || ks[1] != "coto-porcentaje-15-0425-0426-1" {
		t.Fatalf("unexpected keys: %v", ks)
	}
	if collisions != 1 {
		t.Fatalf("collisions = %d, want 1", collisions)
	}
}

func TestKeyService_BatchLimit(t *testing.T) {
	s := NewKeyService(1)
	batch := []domain.Discount{pct("coto", 10, "", ""), pct("coto", 20, "", "")}
	ctx := context.Background()

	if _, _, err := s.BuildKeys(ctx, batch); !errors.Is(err, ErrTooManyDiscounts) {
		t.Fatalf("BuildKeys: want ErrTooManyDiscounts, got %v", err)
	}
	if _, _, err := s.Diff(ctx, "coto", nil, batch); !errors.Is(err, ErrTooManyDiscounts) {
		t.Fatalf("Diff: want ErrTooManyDiscounts, got %v", err)
	}
	if _, err := s.Analyze(ctx, batch); !errors.Is(err, ErrTooManyDiscounts) {
		t.Fatalf("Analyze: want ErrTooManyDiscounts, got %v", err)
	}
}

func TestKeyService_ValidateAndParse(t *testing.T) {
	s := NewKeyService(0)
	ctx := context.Background()

	got := s.Validate(ctx, []string{"coto-porcentaje-15-0425-0426", "short", "UPPER-case-key-x"})
	want := []bool{true, false, false}
	for i, v := range got {
		if v.Valid != want[i] {
			t.Fatalf("Validate[%d] %q = %v, want %v", i, v.Key, v.Valid, want[i])
		}
	}

	p, err := s.Parse(ctx, "coto-porcentaje-15-0425-0426-coto")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Source != "coto" || p.DateRange != "0425-0426" || len(p.Additional) != 1 || p.Additional[0] != "coto" {
		t.Fatalf("unexpected parse: %+v", p)
	}
	if _, err := s.Parse(ctx, "bad key!"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("want ErrInvalidKey, got %v", err)
	}
}

func TestKeyService_Diff(t *testing.T) {
	s := NewKeyService(0)
	old := pct("coto", 15, "2025-04-26", "2025-04-27")
	cur := pct("coto", 15, "2025-05-03", "2025-05-04")

	r, msg, err := s.Diff(context.Background(), "coto", []domain.Discount{old}, []domain.Discount{cur})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(r.ValidityChanged) != 1 || len(r.Added) != 0 || len(r.Removed) != 0 {
		t.Fatalf("unexpected diff: %+v", r.Result)
	}
	if msg == "" {
		t.Fatalf("expected a notification for a validity change")
	}

	_, msg, err = s.Diff(context.Background(), "coto", []domain.Discount{old}, []domain.Discount{old})
	if err != nil || msg != "" {
		t.Fatalf("unchanged batch: msg=%q err=%v", msg, err)
	}
}

func TestKeyService_Analyze(t *testing.T) {
	s := NewKeyService(0)
	d := pct("coto", 15, "2025-04-26", "2025-04-27")
	r, err := s.Analyze(context.Background(), []domain.Discount{d, d})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if r.Uniqueness.Total != 2 || r.Uniqueness.UniqueBaseKeys != 1 || len(r.Uniqueness.Duplicates) != 1 {
		t.Fatalf("unexpected uniqueness: %+v", r.Uniqueness)
	}
}
