package tutorsvc

import (
	"context"
	"sync"

	"github.com/neolearn/neolearn/core/tutor"
)

// Call records one Converse invocation for assertions.
type Call struct {
	SystemPrompt string
	History      []tutor.Turn
	Message      string
}

// MockClient replays scripted replies in order. When the script runs out
// the last reply repeats. Err, when set, preempts everything.
type MockClient struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	Calls   []Call

	next int
}

var _ tutor.Client = (*MockClient)(nil)

func (c *MockClient) Converse(ctx context.Context, systemPrompt string, history []tutor.Turn, message string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls = append(c.Calls, Call{
		SystemPrompt: systemPrompt,
		History:      append([]tutor.Turn(nil), history...),
		Message:      message,
	})
	if c.Err != nil {
		return "", c.Err
	}
	if len(c.Replies) == 0 {
		return "", tutor.NewTransportError(context.Canceled)
	}
	reply := c.Replies[c.next]
	if c.next < len(c.Replies)-1 {
		c.next++
	}
	return reply, nil
}

// Reset clears recorded calls and rewinds the script.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = nil
	c.next = 0
}
