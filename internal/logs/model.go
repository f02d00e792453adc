package logs

import "time"

// Log domains. Public and private mirror the site surfaces the entries
// come from; backend holds server-side events.
const (
	DomainPublic  = "public"
	DomainPrivate = "private"
	DomainBackend = "backend"
)

func ValidDomain(domain string) bool {
	switch domain {
	case DomainPublic, DomainPrivate, DomainBackend:
		return true
	default:
		return false
	}
}

// Entry is a recorded log event.
type Entry struct {
	ID          string    `json:"id"`
	Domain      string    `json:"domain"`
	RouteAction string    `json:"route_action"`
	Method      string    `json:"method,omitempty"`
	StatusCode  int       `json:"status_code,omitempty"`
	ClientHost  string    `json:"client_host"`
	City        string    `json:"city,omitempty"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// EntryInput is the client-submitted part of an entry.
type EntryInput struct {
	RouteAction string `json:"route_action"`
	Method      string `json:"method"`
	StatusCode  int    `json:"status_code"`
	ClientHost  string `json:"client_host"`
	City        string `json:"city"`
	Content     string `json:"content"`
}
