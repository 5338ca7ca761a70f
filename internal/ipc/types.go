package ipc

// ActionRequest runs one player action by name, e.g. "similar" or "volume".
type ActionRequest struct {
	Action string `json:"action"`
	// Query is the search text for "search".
	Query string `json:"query,omitempty"`
	// Number is the 1-based row or playlist position for "select".
	Number int `json:"number,omitempty"`
	// Volume is the level in [0, 1] for "volume".
	Volume float64 `json:"volume,omitempty"`
}

// Match is one ranked search result.
type Match struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ActionResponse reports the player state after an action.
type ActionResponse struct {
	Message string `json:"message"`
	// Error is set when the action was rejected, e.g. an invalid index.
	// The player state in the response is still current.
	Error   string      `json:"error,omitempty"`
	State   PlayerState `json:"state"`
	Matches []Match     `json:"matches,omitempty"`
}

// StatusRequest fetches the player state.
type StatusRequest struct{}

// PlayerState is the wire form of a session snapshot.
type PlayerState struct {
	Status  string  `json:"status"`
	Index   int     `json:"index"`
	Track   string  `json:"track"`
	Path    string  `json:"path"`
	Volume  float64 `json:"volume"`
	Tracks  int     `json:"tracks"`
	Queued  int     `json:"queued"`
	History int     `json:"history"`
	PID     int     `json:"pid"`
}

// StatusResponse wraps the player state.
type StatusResponse struct {
	State PlayerState `json:"state"`
}
