package gateway

import "fmt"

// IntegrationError reports a failed webhook call: transport failure, timeout
// or a non-2xx response carrying the response body as detail.
type IntegrationError struct {
	NodeType   string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *IntegrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("integration call for %s failed: %v", e.NodeType, e.Err)
	}

	return fmt.Sprintf("integration call for %s failed with status %d: %s", e.NodeType, e.StatusCode, e.Body)
}

func (e *IntegrationError) Unwrap() error {
	return e.Err
}
