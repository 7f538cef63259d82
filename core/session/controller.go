package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/neolearn/neolearn/core/topic"
	"github.com/neolearn/neolearn/core/tutor"
)

var ErrNoConversation = errors.New("no open conversation")

type (
	// TopicGetter resolves a topic title to its system prompt.
	TopicGetter interface {
		GetByTitle(ctx context.Context, title string) (topic.Topic, error)
	}

	// ProgressLedger is the durable record of passed topics.
	ProgressLedger interface {
		RecordPass(ctx context.Context, userID, topic string) error
		HasPassed(ctx context.Context, userID, topic string) (bool, error)
	}

	// Controller owns per-user conversation state and drives each chat turn
	// against the tutor, committing progress exactly once per completion.
	Controller struct {
		store    *Store
		topics   TopicGetter
		progress ProgressLedger
		tutor    tutor.Client
	}

	// Snapshot is the render state of a conversation. Celebrate is one-shot:
	// it is true at most once per completion, on the first snapshot taken
	// after the pass signal fired.
	Snapshot struct {
		Topic     string       `json:"topic"`
		State     State        `json:"state"`
		Celebrate bool         `json:"celebrate"`
		Turns     []tutor.Turn `json:"turns"`
	}

	// Reply is the outcome of one chat turn. On a pass signal, Passed is
	// true and Text stays empty: the signal consumes the reply and the raw
	// marker is never shown.
	Reply struct {
		Passed bool   `json:"passed"`
		Text   string `json:"text,omitempty"`
	}
)

func NewController(store *Store, topics TopicGetter, progress ProgressLedger, tutorClient tutor.Client) *Controller {
	return &Controller{
		store:    store,
		topics:   topics,
		progress: progress,
		tutor:    tutorClient,
	}
}

// Open starts a conversation on the given topic, discarding any previous
// conversation of the user. The ledger is consulted once, here; the result
// stays frozen for the lifetime of the conversation.
func (c *Controller) Open(ctx context.Context, username, title string) (Snapshot, error) {
	t, err := c.topics.GetByTitle(ctx, title)
	if err != nil {
		return Snapshot{}, err
	}

	passed, err := c.progress.HasPassed(ctx, username, t.Title)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "checking passed status")
	}

	state := StateActive
	if passed {
		state = StatePreviouslyPassed
	}

	conv := &Conversation{
		username:      username,
		topic:         t.Title,
		prompt:        t.Prompt,
		state:         state,
		alreadyPassed: passed,
	}
	conv.touch()
	c.store.put(conv)

	return snapshotLocked(conv), nil
}

// Current returns the render state of the user's conversation and consumes
// the pending celebration, if any.
func (c *Controller) Current(username string) (Snapshot, error) {
	conv, ok := c.store.get(username)
	if !ok {
		return Snapshot{}, ErrNoConversation
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	snap := snapshotLocked(conv)
	conv.pendingCelebration = false
	return snap, nil
}

// Send drives one chat turn. The user message is appended first and stays in
// the turn sequence even when the tutor call fails, so the user can retry by
// sending again.
func (c *Controller) Send(ctx context.Context, username, message string) (Reply, error) {
	conv, ok := c.store.get(username)
	if !ok {
		return Reply{}, ErrNoConversation
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.touch()

	conv.turns = append(conv.turns, tutor.Turn{Role: tutor.RoleUser, Content: message})
	history := conv.turns[:len(conv.turns)-1]

	raw, err := c.tutor.Converse(ctx, conv.prompt, history, message)
	if err != nil {
		return Reply{}, err
	}

	if containsPassSignal(raw) {
		if err := c.handlePass(ctx, conv); err != nil {
			return Reply{}, err
		}
		return Reply{Passed: true}, nil
	}

	conv.turns = append(conv.turns, tutor.Turn{Role: tutor.RoleTutor, Content: raw})
	return Reply{Text: raw}, nil
}

// handlePass applies the completion transitions. The ledger write is gated
// on the alreadyPassed snapshot taken at Open, and JustPassed absorbs any
// further pass signals silently.
func (c *Controller) handlePass(ctx context.Context, conv *Conversation) error {
	switch conv.state {
	case StateActive:
		if !conv.alreadyPassed {
			if err := c.progress.RecordPass(ctx, conv.username, conv.topic); err != nil {
				return errors.Wrap(err, "recording pass")
			}
		}
		conv.state = StateJustPassed
		conv.pendingCelebration = true
	case StatePreviouslyPassed:
		conv.state = StateJustPassed
		conv.pendingCelebration = true
	case StateJustPassed:
		// already celebrated this session; nothing left to do
	}
	return nil
}

// Reset clears the turn sequence only; topic, completion state and login are
// kept.
func (c *Controller) Reset(username string) error {
	conv, ok := c.store.get(username)
	if !ok {
		return ErrNoConversation
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.turns = nil
	conv.touch()
	return nil
}

// Close discards the user's conversation entirely (logout).
func (c *Controller) Close(username string) {
	c.store.Delete(username)
}

// snapshotLocked copies the visible state; callers hold conv.mu (or own the
// only reference).
func snapshotLocked(conv *Conversation) Snapshot {
	turns := make([]tutor.Turn, len(conv.turns))
	copy(turns, conv.turns)
	return Snapshot{
		Topic:     conv.topic,
		State:     conv.state,
		Celebrate: conv.pendingCelebration,
		Turns:     turns,
	}
}
