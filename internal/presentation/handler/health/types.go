package health

// healthResponse reports overall service health plus the state of each
// registered dependency probe.
type healthResponse struct {
	Status       string            `json:"status" example:"ok"`
	Timestamp    string            `json:"timestamp" example:"2024-01-01T12:00:00Z"` // RFC3339
	Uptime       string            `json:"uptime" example:"2h30m45s"`
	Dependencies map[string]string `json:"dependencies,omitempty"` // probe name -> "ok" or "down"
}
