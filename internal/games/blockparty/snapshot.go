package blockparty

// Snapshot is the observable state of one board after a tick. Grid holds
// the field with the active piece and its negated ghost drawn in.
type Snapshot struct {
	Player       int      `json:"player,omitempty"`
	Grid         [][]int  `json:"grid"`
	Score        int      `json:"score"`
	Lines        int      `json:"lines"`
	Level        int      `json:"level"`
	Held         string   `json:"held,omitempty"`
	Next         []string `json:"next"`
	GameOver     bool     `json:"game_over"`
	Paused       bool     `json:"paused"`
	Placed       bool     `json:"placed"`
	LinesCleared int      `json:"lines_cleared"`
}

// IsGameSnapshot marks Snapshot as a match snapshot payload.
func (Snapshot) IsGameSnapshot() {}
