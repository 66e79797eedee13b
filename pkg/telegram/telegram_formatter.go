package telegram

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const maxMessageLen = 4090

// SubmissionNotice is the data shown to admins when a user proposes a watchlist entry.
type SubmissionNotice struct {
	ID          uint
	Symbol      string
	CompanyName string
	Sector      string
	Term        string
	SubmittedBy string
	Notes       string
}

// PriceChange is one refreshed symbol.
type PriceChange struct {
	Symbol string
	Price  decimal.Decimal
}

// PriceFailure is one symbol the price feed could not serve.
type PriceFailure struct {
	Symbol string
	Error  string
}

// FormatSubmissionForTelegram formats a new watchlist submission into a Markdown message.
func FormatSubmissionForTelegram(n SubmissionNotice) string {
	var builder strings.Builder
	builder.WriteString("📝 *New Watchlist Submission*\n\n")
	builder.WriteString(fmt.Sprintf("📈 *Symbol:* `%s`\n", n.Symbol))
	builder.WriteString(fmt.Sprintf("🏢 *Company:* %s\n", escapeMarkdown(n.CompanyName)))
	builder.WriteString(fmt.Sprintf("🗂 *Sector:* %s\n", escapeMarkdown(n.Sector)))

	termIcon := "⏳"
	if n.Term == "short" {
		termIcon = "⚡"
	}
	builder.WriteString(fmt.Sprintf("%s *Term:* %s\n", termIcon, n.Term))
	builder.WriteString(fmt.Sprintf("👤 *By:* %s\n", escapeMarkdown(n.SubmittedBy)))
	if n.Notes != "" {
		builder.WriteString(fmt.Sprintf("💬 *Notes:* %s\n", escapeMarkdown(n.Notes)))
	}
	builder.WriteString(fmt.Sprintf("\nReview submission #%d in the admin panel.", n.ID))
	return builder.String()
}

// FormatPriceRefreshForTelegram formats a price refresh summary, splitting it into
// several messages when it would exceed Telegram's message length limit.
func FormatPriceRefreshForTelegram(updated []PriceChange, failed []PriceFailure) []string {
	if len(updated) == 0 && len(failed) == 0 {
		return []string{"Watchlist is empty, no prices refreshed."}
	}

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString(fmt.Sprintf("💹 *Price Refresh* (%d updated, %d failed)\n\n", len(updated), len(failed)))
		} else {
			current.WriteString(fmt.Sprintf("---*Price Refresh Part %d*---\n\n", part))
		}
	}
	appendLine := func(line string) {
		if current.Len()+len(line) > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(line)
	}

	startNewPart()
	for _, u := range updated {
		appendLine(fmt.Sprintf("🟢 `%s` %s\n", u.Symbol, u.Price.StringFixed(2)))
	}
	for _, f := range failed {
		appendLine(fmt.Sprintf("🔴 `%s` %s\n", f.Symbol, escapeMarkdown(f.Error)))
	}
	messages = append(messages, current.String())

	return messages
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
