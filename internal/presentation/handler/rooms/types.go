package rooms

// earshotEntry describes one room reachable by sound from the queried room.
type earshotEntry struct {
	RoomID                int64    `json:"roomId" example:"3001"`
	Distance              int      `json:"distance" example:"2"`                  // Hops from the source room
	DirectionFromSource   string   `json:"directionFromSource" example:"north"`   // First step of the path
	DirectionFromListener string   `json:"directionFromListener" example:"south"` // Where the sound arrives from
	Path                  []string `json:"path"`                                  // Full direction sequence from the source
}

// earshotResponse represents the rooms within a sound budget of a room.
type earshotResponse struct {
	RoomID int64          `json:"roomId" example:"3000"` // The queried source room
	Budget int            `json:"budget" example:"4"`    // The cost budget used for the query
	Rooms  []earshotEntry `json:"rooms"`
}
