package server

type FixRequest struct {
	MML        string   `json:"mml"`
	Strategies []string `json:"strategies,omitempty"`
	Strict     bool     `json:"strict,omitempty"`
	Verbose    bool     `json:"verbose,omitempty"`
}

type TrackResponse struct {
	Index      int            `json:"index"`
	Before     int            `json:"before"`
	After      int            `json:"after"`
	Strategy   string         `json:"strategy"`
	Lengths    map[string]int `json:"lengths"`
	Shortfalls int            `json:"shortfalls"`
}

type FixResponse struct {
	ID          string          `json:"id"`
	MML         string          `json:"mml"`
	Tracks      []TrackResponse `json:"tracks"`
	TempoPoints int             `json:"tempo_points"`
	Segments    int             `json:"segments"`
	Log         []string        `json:"log"`
	ElapsedMS   int64           `json:"elapsed_ms"`
}

type SegmentResponse struct {
	Start   int   `json:"start"`
	End     int   `json:"end"`
	Tempo   int   `json:"tempo"`
	Counts  []int `json:"counts"`
	Target  int   `json:"target"`
	Aligned bool  `json:"aligned"`
	Final   bool  `json:"final"`
}

type CheckResponse struct {
	ID          string            `json:"id"`
	Lengths     []int             `json:"lengths"`
	TempoPoints int               `json:"tempo_points"`
	Segments    []SegmentResponse `json:"segments"`
	Invalid     string            `json:"invalid,omitempty"`
	NeedsFix    bool              `json:"needs_fix"`
	DurationMS  int64             `json:"duration_ms"`
}

type ErrorResponse struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"detail"`
}
