package engine

// PullProgress reports download progress for a model pull operation.
type PullProgress struct {
	Status    string `json:"status"`
	Total     int64  `json:"total,omitempty"`
	Completed int64  `json:"completed,omitempty"`
}

// Backend names accepted by Detect.
const (
	BackendOpenRouter = "openrouter"
	BackendOllama     = "ollama"
)
