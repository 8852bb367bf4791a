package keys

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenRule maps a substring of a folded payment-method string to its token.
// Rules are evaluated in slice order; the first match wins.
type tokenRule struct {
	match string
	token string
}

// specificProducts are co-branded cards and named bank products. They are
// checked before banks because they contain bank names ("Galicia Más"
// contains "galicia").
var specificProducts = []tokenRule{
	{"tarjeta carrefour prepaga", "carrefourpre"},
	{"carrefour prepaga", "carrefourpre"},
	{"tarjeta carrefour credito", "carrefourcred"},
	{"tarjeta de credito carrefour", "carrefourcred"},
	{"tarjeta carrefour", "carrefourtc"},
	{"tarjeta comunidad coto", "cotocom"},
	{"comunidad coto", "cotocom"},
	{"tarjeta cencosud", "cencosud"},
	{"tarjeta jumbo", "cencosud"},
	{"club dia", "clubdia"},
	{"galicia eminent", "galiciaem"},
	{"galicia mas", "galiciamas"},
	{"santander women", "santwomen"},
	{"santander select", "santselect"},
	{"macro selecta", "macrosel"},
	{"bbva pack", "bbvapack"},
	{"icbc black", "icbcblack"},
	{"patagonia 365", "pat365"},
	{"supervielle identite", "supident"},
	{"naranja x", "naranjax"},
	{"tarjeta naranja", "naranja"},
	{"nativa nacion", "nativa"},
	{"tarjeta nativa", "nativa"},
	{"ciudad jubilados", "ciudadjub"},
	{"provincia jubilados", "provjub"},
}

// banksAndWallets are generic bank and wallet names. A credit/debit suffix is
// appended when the text names the card kind.
var banksAndWallets = []tokenRule{
	{"mercado pago", "mp"},
	{"mercadopago", "mp"},
	{"cuenta dni", "cuentadni"},
	{"personal pay", "personalpay"},
	{"galicia", "galicia"},
	{"santander", "santander"},
	{"bbva", "bbva"},
	{"frances", "bbva"},
	{"macro", "macro"},
	{"banco nacion", "nacion"},
	{"bna", "nacion"},
	{"banco provincia", "provincia"},
	{"bapro", "provincia"},
	{"banco ciudad", "ciudad"},
	{"icbc", "icbc"},
	{"hsbc", "hsbc"},
	{"supervielle", "supervielle"},
	{"patagonia", "patagonia"},
	{"credicoop", "credicoop"},
	{"comafi", "comafi"},
	{"hipotecario", "hipotecario"},
	{"columbia", "columbia"},
	{"brubank", "brubank"},
	{"uala", "uala"},
	{"naranja", "naranja"},
	{"prex", "prex"},
	{"openbank", "openbank"},
	{"banco del sol", "bancosol"},
	{"banco san juan", "sanjuan"},
	{"banco santa fe", "santafe"},
	{"banco entre rios", "entrerios"},
	{"banco de cordoba", "bancor"},
	{"bancor", "bancor"},
}

// paymentRails are card networks and interoperable QR rails.
var paymentRails = []tokenRule{
	{"american express", "amex"},
	{"amex", "amex"},
	{"mastercard", "master"},
	{"master", "master"},
	{"visa", "visa"},
	{"cabal", "cabal"},
	{"maestro", "maestro"},
	{"modo", "modo"},
}

// accentFolder strips combining marks after canonical decomposition, so "é"
// and "e" compare equal.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases s and removes diacritics. Whitespace runs collapse to one
// space and the ends are trimmed.
func fold(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// alnum folds s and keeps only [a-z0-9].
func alnum(s string) string {
	f := fold(s)
	var b strings.Builder
	b.Grow(len(f))
	for _, r := range f {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePaymentMethod maps a payment method display string to a short
// stable token. ok is false when no rule matches; such methods contribute
// nothing to the key.
func NormalizePaymentMethod(method string) (token string, ok bool) {
	m := fold(method)
	if m == "" {
		return "", false
	}

	for _, r := range specificProducts {
		if m == r.match || strings.Contains(m, r.match) {
			return r.token, true
		}
	}

	for _, r := range banksAndWallets {
		if strings.Contains(m, r.match) {
			switch {
			case strings.Contains(m, "credito"):
				return r.token + "cred", true
			case strings.Contains(m, "debito"):
				return r.token + "deb", true
			}
			return r.token, true
		}
	}

	for _, r := range paymentRails {
		if m == r.match || strings.Contains(m, r.match) {
			return r.token, true
		}
	}
	return "", false
}

// weekdayOrder lists the canonical weekday names (folded) in calendar order,
// Monday first, with their abbreviations.
var weekdayOrder = []struct {
	name string
	abbr string
}{
	{"lunes", "lun"},
	{"martes", "mar"},
	{"miercoles", "mie"},
	{"jueves", "jue"},
	{"viernes", "vie"},
	{"sabado", "sab"},
	{"domingo", "dom"},
}

// weekdayIndex returns the calendar position of a weekday name, or -1.
func weekdayIndex(name string) int {
	f := fold(name)
	for i, w := range weekdayOrder {
		if f == w.name {
			return i
		}
	}
	return -1
}

// NormalizeWeekdaySet renders a weekday list as concatenated abbreviations in
// calendar order. Unknown names are skipped and duplicates collapse, so the
// result is independent of input order.
func NormalizeWeekdaySet(weekdays []string) string {
	var seen [7]bool
	for _, w := range weekdays {
		if i := weekdayIndex(w); i >= 0 {
			seen[i] = true
		}
	}
	var b strings.Builder
	for i, ok := range seen {
		if ok {
			b.WriteString(weekdayOrder[i].abbr)
		}
	}
	return b.String()
}

// distinctWeekdays counts the recognized, distinct weekdays in a list.
func distinctWeekdays(weekdays []string) int {
	var seen [7]bool
	n := 0
	for _, w := range weekdays {
		if i := weekdayIndex(w); i >= 0 && !seen[i] {
			seen[i] = true
			n++
		}
	}
	return n
}

// NormalizeLocationSet renders one or two locations as their concatenated
// folded names. Three or more locations mean "everywhere" and yield "".
func NormalizeLocationSet(where []string) string {
	if len(where) == 0 || len(where) >= 3 {
		return ""
	}
	names := make([]string, 0, len(where))
	for _, w := range where {
		names = append(names, alnum(w))
	}
	sort.Strings(names)
	return strings.Join(names, "")
}
