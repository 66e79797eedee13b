package telegram

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSubmissionForTelegram(t *testing.T) {
	msg := FormatSubmissionForTelegram(SubmissionNotice{
		ID:          7,
		Symbol:      "NVDA",
		CompanyName: "NVIDIA",
		Sector:      "Technology",
		Term:        "long",
		SubmittedBy: "jane_doe",
	})

	assert.Contains(t, msg, "`NVDA`")
	assert.Contains(t, msg, "jane\\_doe")
	assert.Contains(t, msg, "#7")
	assert.NotContains(t, msg, "Notes")
}

func TestFormatPriceRefreshForTelegram(t *testing.T) {
	t.Run("empty batch", func(t *testing.T) {
		msgs := FormatPriceRefreshForTelegram(nil, nil)
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0], "empty")
	})

	t.Run("partial failure", func(t *testing.T) {
		msgs := FormatPriceRefreshForTelegram(
			[]PriceChange{{Symbol: "AAPL", Price: decimal.RequireFromString("189.5")}},
			[]PriceFailure{{Symbol: "BADSYM", Error: "no price"}},
		)
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0], "1 updated, 1 failed")
		assert.Contains(t, msgs[0], "`AAPL` 189.50")
		assert.Contains(t, msgs[0], "`BADSYM` no price")
	})

	t.Run("splits long batches", func(t *testing.T) {
		var updated []PriceChange
		for i := 0; i < 400; i++ {
			updated = append(updated, PriceChange{Symbol: "SYM" + strings.Repeat("X", 5), Price: decimal.NewFromInt(int64(i))})
		}
		msgs := FormatPriceRefreshForTelegram(updated, nil)
		require.Greater(t, len(msgs), 1)
		for _, m := range msgs {
			assert.LessOrEqual(t, len(m), maxMessageLen)
		}
		assert.Contains(t, msgs[1], "Part 2")
	})
}
