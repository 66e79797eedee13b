package entity

// Models lists every persisted model, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&WatchlistSubmission{},
		&WatchlistEntry{},
		&Post{},
		&Comment{},
		&Like{},
		&PostVote{},
		&Message{},
		&CalendarEvent{},
		&CalendarVote{},
		&BrokerageLink{},
		&Holding{},
		&RefreshRun{},
	}
}
