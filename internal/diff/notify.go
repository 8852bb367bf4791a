package diff

import (
	"fmt"
	"strings"
)

// maxNotificationItems caps the lines listed per section.
const maxNotificationItems = 15

// FormatNotification renders r as a chat-friendly message for source. It
// returns "" when nothing changed, meaning no notification should be sent.
func FormatNotification(source string, r EnhancedResult) string {
	if !r.HasChanges() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d new, %d removed, %d validity changes (%d → %d discounts)\n",
		strings.ToUpper(source), len(r.AddedDetails), len(r.RemovedDetails), len(r.ValidityDetails), r.TotalOld, r.TotalNew)

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		b.WriteString("\n" + title + "\n")
		for i, l := range lines {
			if i == maxNotificationItems {
				fmt.Fprintf(&b, "• …and %d more\n", len(lines)-maxNotificationItems)
				break
			}
			b.WriteString("• " + l + "\n")
		}
	}

	section("New", summaries(r.AddedDetails))
	section("Removed", summaries(r.RemovedDetails))

	moved := make([]string, len(r.ValidityDetails))
	for i, p := range r.ValidityDetails {
		moved[i] = fmt.Sprintf("%s (%s → %s)", p.Summary, periodLabel(p.Old.ValidFrom, p.Old.ValidUntil), periodLabel(p.New.ValidFrom, p.New.ValidUntil))
	}
	section("Validity changed", moved)

	return strings.TrimRight(b.String(), "\n")
}

func summaries(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Summary
	}
	return out
}

func periodLabel(from, until string) string {
	return strings.TrimSpace(from) + ".." + strings.TrimSpace(until)
}
