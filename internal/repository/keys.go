package repository

// Fixed keys of the persistent store.
const (
	SessionKey  = "ticketapp_session"
	AccountsKey = "ticketapp_users"

	ticketsKeyPrefix = "tickets_"
)

// TicketsKey derives the store key holding the ticket set owned by email.
// It is recomputed on every access so a logout/login cycle can never reach
// the previous identity's data.
func TicketsKey(email string) string {
	return ticketsKeyPrefix + email
}
