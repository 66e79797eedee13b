package common

const (
	RedisStreamCommunityEvents = "community.events"

	// RedisKeyLastPrice is a hash holding the latest refreshed price of a symbol.
	RedisKeyLastPrice = "last_price:%s"

	CacheKeyWatchlistGrouped = "watchlist:grouped"
	CacheKeyHeadlines        = "news:headlines"
)

const (
	EventSubmissionReviewed = "submission.reviewed"
	EventMessageSent        = "message.sent"
	EventHoldingsSynced     = "holdings.synced"

	// EventWatchlistUpdated is broadcast (recipient 0) whenever watchlist entries change.
	EventWatchlistUpdated = "watchlist.updated"
)
