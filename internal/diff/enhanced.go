package diff

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-promo-backend/internal/domain"
)

// Entry is a reported key resolved back to its discount.
type Entry struct {
	Key      string          `json:"key"`
	Summary  string          `json:"summary"`
	Discount domain.Discount `json:"discount"`
}

// PeriodChange is a ValidityChange with both discounts resolved.
type PeriodChange struct {
	ValidityChange
	Summary string          `json:"summary"`
	Old     domain.Discount `json:"old"`
	New     domain.Discount `json:"new"`
}

// EnhancedResult carries the plain Result plus the resolved details used to
// compose notifications.
type EnhancedResult struct {
	Result
	AddedDetails    []Entry        `json:"addedDetails"`
	RemovedDetails  []Entry        `json:"removedDetails"`
	ValidityDetails []PeriodChange `json:"validityDetails"`
}

// CalculateEnhanced is Calculate plus resolution of every reported key to its
// discount and a one-line human-readable summary.
func CalculateEnhanced(previous, current []domain.Discount) EnhancedResult {
	c := compare(previous, current)
	out := EnhancedResult{
		Result:          c.result(),
		AddedDetails:    make([]Entry, 0, len(c.added)),
		RemovedDetails:  make([]Entry, 0, len(c.removed)),
		ValidityDetails: make([]PeriodChange, 0, len(c.changed)),
	}
	for _, i := range c.added {
		d := c.cur.discounts[i]
		out.AddedDetails = append(out.AddedDetails, Entry{Key: c.cur.full[i], Summary: Describe(d), Discount: d})
	}
	for _, i := range c.removed {
		d := c.prev.discounts[i]
		out.RemovedDetails = append(out.RemovedDetails, Entry{Key: c.prev.full[i], Summary: Describe(d), Discount: d})
	}
	for i, p := range c.changed {
		oldD, newD := c.prev.discounts[p.old], c.cur.discounts[p.new]
		out.ValidityDetails = append(out.ValidityDetails, PeriodChange{
			ValidityChange: out.ValidityChanged[i],
			Summary:        Describe(newD),
			Old:            oldD,
			New:            newD,
		})
	}
	return out
}

// Describe renders a discount as one line, e.g.
// "COTO 15% off with Mercado Pago on Lunes, Miércoles at Coto".
func Describe(d domain.Discount) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strings.TrimSpace(d.Source)))

	value := strconv.FormatFloat(d.Discount.Value, 'f', -1, 64)
	switch d.Discount.Type {
	case domain.TypeInstallments:
		fmt.Fprintf(&b, " %s cuotas sin intereses", value)
	case domain.TypePercentage:
		fmt.Fprintf(&b, " %s%% off", value)
	default:
		fmt.Fprintf(&b, " %s %s", value, d.Discount.Type)
	}

	if pm := d.PrimaryPaymentMethod(); pm != "" {
		b.WriteString(" with " + pm)
	}
	if len(d.Weekdays) > 0 && len(d.Weekdays) < 7 {
		caser := cases.Title(language.Spanish)
		days := make([]string, len(d.Weekdays))
		for i, w := range d.Weekdays {
			days[i] = caser.String(strings.TrimSpace(w))
		}
		b.WriteString(" on " + strings.Join(days, ", "))
	}
	if len(d.Where) > 0 {
		b.WriteString(" at " + strings.Join(d.Where, ", "))
	}
	if d.Limits.MaxDiscount != nil {
		b.WriteString(" (cap " + strconv.FormatFloat(*d.Limits.MaxDiscount, 'f', -1, 64) + ")")
	}
	return b.String()
}
