package protocol

import "context"

// AIRequest carries the inputs of one completion call made by an ai-* node.
type AIRequest struct {
	Prompt  string
	Message string
	Model   string
}

// AIResult is the normalized output of an AI provider call.
type AIResult struct {
	Text       string
	Model      string
	TokensUsed int
}

// AIProvider produces completions for ai-* nodes. The default implementation
// is deterministic and offline; a real provider can be swapped in without
// changing node contracts.
type AIProvider interface {
	Complete(ctx context.Context, request AIRequest) (*AIResult, error)
}
