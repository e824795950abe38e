package models

// ExecutionContext is the mutable key→value accumulator of one run. It is
// seeded with trigger inputs and updated with each node's output, keyed by
// node id. It lives only for the duration of a run and is never persisted as
// its own entity; each run owns its own instance, so writes need no locking.
type ExecutionContext struct {
	ExecutionID string
	FlowID      string
	Values      map[string]any
}

// NewExecutionContext builds a context for one run, copying the seed values.
func NewExecutionContext(executionID, flowID string, seed map[string]any) *ExecutionContext {
	values := make(map[string]any, len(seed))
	for k, v := range seed {
		values[k] = v
	}

	return &ExecutionContext{
		ExecutionID: executionID,
		FlowID:      flowID,
		Values:      values,
	}
}

// Set stores a value under a key, overwriting any previous value.
func (c *ExecutionContext) Set(key string, value any) {
	c.Values[key] = value
}

// Get retrieves a value by key.
func (c *ExecutionContext) Get(key string) (any, bool) {
	value, ok := c.Values[key]

	return value, ok
}

// Snapshot returns a shallow copy of the accumulated values, safe to hand to
// the ledger after the run is sealed.
func (c *ExecutionContext) Snapshot() map[string]any {
	snapshot := make(map[string]any, len(c.Values))
	for k, v := range c.Values {
		snapshot[k] = v
	}

	return snapshot
}
