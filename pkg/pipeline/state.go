package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status tracks a record through the pipeline state machine.
type Status string

const (
	StatusPending      Status = "pending"
	StatusGathering    Status = "gathering"
	StatusSynthesizing Status = "synthesizing"
	StatusReviewing    Status = "reviewing"
	StatusComplete     Status = "complete"
	StatusFailed       Status = "failed"
)

// ParseStatus validates a raw status string from a serialized record.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPending, StatusGathering, StatusSynthesizing, StatusReviewing, StatusComplete, StatusFailed:
		return s, nil
	}
	return "", fmt.Errorf("unknown pipeline status %q", raw)
}

// Terminal reports whether the status is absorbing. No stage mutates a
// record once it is terminal.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// Stage roles, used as message senders in the audit trail.
const (
	RoleGatherer    = "gatherer"
	RoleSynthesizer = "synthesizer"
	RoleGrader      = "grader"
	RoleCoordinator = "coordinator"
)

// DefaultMaxIterations is the revision budget applied when a caller or a
// serialized record does not supply one.
const DefaultMaxIterations = 3

// Message is one entry in the append-only audit trail.
type Message struct {
	Content   string
	Role      string
	Timestamp string
}

// State is the single unit of work threaded through every stage. One run
// owns one record exclusively; it is mutated in place and never shared
// across concurrent runs.
type State struct {
	TaskID         string
	Query          string
	Status         Status
	Findings       []string
	Synthesis      string
	GradingNotes   []string
	FinalOutput    string
	Error          string
	IterationCount int
	MaxIterations  int
	Messages       []Message
	CreatedAt      string
}

// NewState creates a fresh pending record for a query.
func NewState(query string, maxIterations int) *State {
	return &State{
		TaskID:        uuid.NewString(),
		Query:         query,
		Status:        StatusPending,
		MaxIterations: maxIterations,
		CreatedAt:     now(),
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// AddMessage appends an audit entry from the given role. Entries are never
// removed or rewritten.
func (s *State) AddMessage(content, role string) {
	s.Messages = append(s.Messages, Message{
		Content:   content,
		Role:      role,
		Timestamp: now(),
	})
}

// Terminal reports whether the record reached an absorbing status.
func (s *State) Terminal() bool {
	return s.Status.Terminal()
}

// ToMap serializes the record into plain scalars, slices and maps so it can
// cross any transport boundary. The inverse is StateFromMap.
func (s *State) ToMap() map[string]interface{} {
	messages := make([]interface{}, 0, len(s.Messages))
	for _, m := range s.Messages {
		messages = append(messages, map[string]interface{}{
			"content":   m.Content,
			"role":      m.Role,
			"timestamp": m.Timestamp,
		})
	}

	return map[string]interface{}{
		"task_id":         s.TaskID,
		"query":           s.Query,
		"status":          string(s.Status),
		"findings":        append([]string{}, s.Findings...),
		"synthesis":       s.Synthesis,
		"grading_notes":   append([]string{}, s.GradingNotes...),
		"final_output":    s.FinalOutput,
		"error":           s.Error,
		"iteration_count": s.IterationCount,
		"max_iterations":  s.MaxIterations,
		"messages":        messages,
		"created_at":      s.CreatedAt,
	}
}

// StateFromMap rebuilds a record from its serialized form. It fails fast on
// a missing required field or an unknown status; corrupt records are never
// partially recovered.
func StateFromMap(data map[string]interface{}) (*State, error) {
	taskID, ok := data["task_id"].(string)
	if !ok || taskID == "" {
		return nil, fmt.Errorf("deserialize state: missing task_id")
	}
	query, ok := data["query"].(string)
	if !ok {
		return nil, fmt.Errorf("deserialize state: missing query")
	}
	rawStatus, ok := data["status"].(string)
	if !ok {
		return nil, fmt.Errorf("deserialize state: missing status")
	}
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("deserialize state: %w", err)
	}

	st := &State{
		TaskID:         taskID,
		Query:          query,
		Status:         status,
		Synthesis:      stringField(data, "synthesis"),
		FinalOutput:    stringField(data, "final_output"),
		Error:          stringField(data, "error"),
		IterationCount: intField(data, "iteration_count", 0),
		MaxIterations:  intField(data, "max_iterations", DefaultMaxIterations),
		CreatedAt:      stringField(data, "created_at"),
	}

	if st.Findings, err = stringSliceField(data, "findings"); err != nil {
		return nil, err
	}
	if st.GradingNotes, err = stringSliceField(data, "grading_notes"); err != nil {
		return nil, err
	}
	if st.Messages, err = messagesField(data); err != nil {
		return nil, err
	}
	return st, nil
}

func stringField(data map[string]interface{}, key string) string {
	v, _ := data[key].(string)
	return v
}

// intField tolerates float64 because JSON decoding produces it for every
// number.
func intField(data map[string]interface{}, key string, fallback int) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

func stringSliceField(data map[string]interface{}, key string) ([]string, error) {
	switch v := data[key].(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string{}, v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("deserialize state: %s contains a non-string entry", key)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("deserialize state: %s is not a sequence", key)
}

func messagesField(data map[string]interface{}) ([]Message, error) {
	raw, exists := data["messages"]
	if !exists || raw == nil {
		return nil, nil
	}
	entries, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("deserialize state: messages is not a sequence")
	}

	out := make([]Message, 0, len(entries))
	for i, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("deserialize state: message %d is not a mapping", i)
		}
		content, ok := m["content"].(string)
		if !ok {
			return nil, fmt.Errorf("deserialize state: message %d missing content", i)
		}
		role, ok := m["role"].(string)
		if !ok {
			return nil, fmt.Errorf("deserialize state: message %d missing role", i)
		}
		out = append(out, Message{
			Content:   content,
			Role:      role,
			Timestamp: stringField(m, "timestamp"),
		})
	}
	return out, nil
}
