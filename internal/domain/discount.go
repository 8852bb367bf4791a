package domain

import (
	"bytes"
	"encoding/json"
	"errors"
)

// DiscountType is the kind of benefit a promotion grants.
type DiscountType string

const (
	// TypePercentage is a percentage off the ticket ("porcentaje").
	TypePercentage DiscountType = "porcentaje"
	// TypeInstallments is an interest-free installment plan ("cuotas sin intereses").
	TypeInstallments DiscountType = "cuotas sin intereses"
)

// DiscountValue couples the discount type with its magnitude: a percentage for
// TypePercentage, an installment count for TypeInstallments.
type DiscountValue struct {
	Type  DiscountType `json:"type"`
	Value float64      `json:"value"`
}

// Limits describes the refund cap of a promotion.
type Limits struct {
	MaxDiscount          *float64 `json:"maxDiscount,omitempty"`
	ExplicitlyHasNoLimit bool     `json:"explicitlyHasNoLimit"`
}

// Discount is one promotional offer as produced by the extraction pipeline.
// It is a value object: nothing in this repository mutates one after decoding.
//
// Only the identifying fields (Source through Restrictions) take part in key
// generation. URL, Title, Description and AdditionalInfo are descriptive.
type Discount struct {
	Source           string          `json:"source"`
	Discount         DiscountValue   `json:"discount"`
	ValidFrom        string          `json:"validFrom"`
	ValidUntil       string          `json:"validUntil"`
	Weekdays         []string        `json:"weekdays,omitempty"`
	PaymentMethods   [][]string      `json:"paymentMethods,omitempty"`
	Where            []string        `json:"where,omitempty"`
	Membership       []string        `json:"membership,omitempty"`
	AppliesOnlyTo    map[string]bool `json:"appliesOnlyTo,omitempty"`
	Limits           Limits          `json:"limits"`
	ExcludesProducts *string         `json:"excludesProducts,omitempty"`
	Restrictions     []string        `json:"restrictions,omitempty"`

	URL            string `json:"url,omitempty"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

// PrimaryPaymentMethod returns the first method of the first group, or "".
func (d Discount) PrimaryPaymentMethod() string {
	if len(d.PaymentMethods) == 0 || len(d.PaymentMethods[0]) == 0 {
		return ""
	}
	return d.PaymentMethods[0][0]
}

// ErrInvalidBatch is returned by DecodeDiscounts when the payload is neither a
// JSON array of discounts nor an object carrying a "discounts" array.
var ErrInvalidBatch = errors.New("payload is not a discount batch")

// DecodeDiscounts decodes a batch persisted by a previous run. Two shapes are
// accepted: a bare array, or {"discounts": [...]}. A JSON null decodes to an
// empty batch.
func DecodeDiscounts(b []byte) ([]Discount, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil, ErrInvalidBatch
	}

	switch trimmed[0] {
	case '[':
		var out []Discount
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	case '{':
		var wrapped struct {
			Discounts *[]Discount `json:"discounts"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, err
		}
		if wrapped.Discounts == nil {
			return nil, ErrInvalidBatch
		}
		return *wrapped.Discounts, nil
	case 'n':
		if string(trimmed) == "null" {
			return []Discount{}, nil
		}
	}
	return nil, ErrInvalidBatch
}
