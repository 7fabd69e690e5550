package domain

// Metrics summarizes a ticket list for the dashboard counters.
type Metrics struct {
	Total           int
	ResolvedPercent int
	OpenCount       int
	NewTodayCount   int
}

// BoardColumn is one status column of the board view.
type BoardColumn struct {
	Status  TicketStatus
	Tickets []*Ticket
}
