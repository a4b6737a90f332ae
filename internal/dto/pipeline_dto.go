package dto

// RunPipelineRequest starts a synchronous pipeline run. Omitted fields fall
// back to the server's configured defaults.
type RunPipelineRequest struct {
	Query             string   `json:"query" validate:"required,min=1"`
	MaxIterations     int      `json:"max_iterations" validate:"omitempty,gte=1,lte=10"`
	ApprovalThreshold *float64 `json:"approval_threshold" validate:"omitempty,gte=0,lte=1"`
	Mock              *bool    `json:"mock"`
}

type RunPipelineResponse struct {
	TaskID         string `json:"task_id"`
	Query          string `json:"query"`
	Status         string `json:"status"`
	FinalOutput    string `json:"final_output"`
	MessageCount   int    `json:"message_count"`
	IterationCount int    `json:"iteration_count"`
	FindingsCount  int    `json:"findings_count"`
}

// DemoStreamRequest is the first frame a websocket client sends on /demo.
type DemoStreamRequest struct {
	Query         string `json:"query" validate:"required,min=1"`
	MaxIterations int    `json:"max_iterations" validate:"omitempty,gte=1,lte=10"`
	Mock          *bool  `json:"mock"`
}
