package geo

import "time"

// Record is a stored geolocation lookup result.
type Record struct {
	ID        string    `json:"id"`
	IP        string    `json:"ip"`
	City      string    `json:"city"`
	Region    string    `json:"region"`
	Country   string    `json:"country"`
	Loc       string    `json:"loc"`
	Org       string    `json:"org"`
	CreatedAt time.Time `json:"created_at"`
}
