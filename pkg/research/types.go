package research

import "time"

// Config holds the defaults of an Engine.
type Config struct {
	// MaxLoops bounds the loop: retrieval repeats while LoopCount <= MaxLoops,
	// so a run performs MaxLoops+1 retrievals.
	MaxLoops      int
	RevealSources bool
	// TopK is the passage count requested from the retriever.
	TopK int
	// CallTimeout bounds each gateway call. Zero means no per-call timeout.
	CallTimeout time.Duration
}

// DefaultConfig mirrors the agent defaults in pkg/config.
func DefaultConfig() Config {
	return Config{
		MaxLoops:    3,
		TopK:        5,
		CallTimeout: 60 * time.Second,
	}
}

// State is the record threaded through every loop iteration of one run.
type State struct {
	Topic          string   `json:"topic"`
	CurrentQuery   string   `json:"current_query"`
	RetrievedTexts []string `json:"retrieved_texts"`
	SourceRecords  []string `json:"source_records"`
	LoopCount      int      `json:"loop_count"`
	Summary        string   `json:"summary"`
}

func newState(topic string) *State {
	return &State{
		Topic:          topic,
		RetrievedTexts: []string{},
		SourceRecords:  []string{},
	}
}

// latestResult is the most recent retrieval text, or "" before any retrieval.
func (s *State) latestResult() string {
	if len(s.RetrievedTexts) == 0 {
		return ""
	}
	return s.RetrievedTexts[len(s.RetrievedTexts)-1]
}

// snapshot copies s so hooks never alias the engine's slices.
func (s *State) snapshot() State {
	c := *s
	c.RetrievedTexts = append([]string(nil), s.RetrievedTexts...)
	c.SourceRecords = append([]string(nil), s.SourceRecords...)
	return c
}

// QueryPlan is the structured answer of the query-writer step.
type QueryPlan struct {
	Query     *string `json:"query"`
	Aspect    string  `json:"aspect"`
	Rationale string  `json:"rationale"`
}

// Reflection is the structured answer of the reflection step.
type Reflection struct {
	FollowUpQuery *string `json:"follow_up_query"`
}
