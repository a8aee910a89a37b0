package agent

import "context"

// Mock provides scripted generation responses for testing.
type Mock struct {
	// Response is returned verbatim when Err is nil.
	Response string
	// Err, when set, fails every Generate call.
	Err error
	// Prompts records every prompt submitted, in order.
	Prompts []string
}

// Generate returns the scripted response or error.
func (m *Mock) Generate(ctx context.Context, prompt string, opts Options) (*Result, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return nil, m.Err
	}
	return &Result{Content: m.Response, FinishReason: "stop"}, nil
}
