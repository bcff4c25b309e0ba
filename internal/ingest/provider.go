// Package ingest holds types shared by the text import sources.
package ingest

// Result holds the outcome of parsing one import file.
type Result struct {
	Source       string   `json:"source,omitempty"`
	LinesRead    int      `json:"lines_read"`
	LinesMatched int      `json:"lines_matched"`
	Candidates   []string `json:"candidates"`

	MovementsAdded   int `json:"movements_added,omitempty"`
	MovementsSkipped int `json:"movements_skipped,omitempty"`

	Message string `json:"message,omitempty"`
}
