package entity

// Sentiment is a directional outlook.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Sentiments lists every valid sentiment in display order.
var Sentiments = []Sentiment{SentimentBullish, SentimentBearish, SentimentNeutral}

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentBullish, SentimentBearish, SentimentNeutral:
		return true
	}
	return false
}
