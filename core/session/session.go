package session

import (
	"strings"
	"sync"
	"time"

	"github.com/neolearn/neolearn/core/tutor"
)

// State of a conversation with respect to topic completion.
type State string

const (
	// StateActive: conversation ongoing, topic not passed in the ledger when
	// it was opened.
	StateActive State = "active"
	// StateJustPassed: the pass signal was detected this session; a one-shot
	// celebration is (or was) pending.
	StateJustPassed State = "just_passed"
	// StatePreviouslyPassed: the topic was already recorded as passed before
	// this conversation started. Chatting continues normally.
	StatePreviouslyPassed State = "previously_passed"
)

// passMarker is the informal completion contract with the tutor model: the
// marker substring of a whitespace-stripped reply. It is a plain substring
// match, not a structured parse; a reply that merely mentions the marker is
// indistinguishable from a genuine signal.
const passMarker = `"status":"passed"`

// containsPassSignal reports whether the tutor reply carries the completion
// marker, after removing all whitespace.
func containsPassSignal(reply string) bool {
	return strings.Contains(strings.Join(strings.Fields(reply), ""), passMarker)
}

// Conversation is the transient per-user chat state. It exists only while a
// user has a topic open and is never persisted. alreadyPassed is the
// ledger snapshot frozen when the topic was opened; the single ledger write
// is gated on it, never on a live re-query.
type Conversation struct {
	mu sync.Mutex

	username string
	topic    string
	prompt   string

	state              State
	alreadyPassed      bool
	pendingCelebration bool
	turns              []tutor.Turn

	lastActivity time.Time
}

func (c *Conversation) touch() { c.lastActivity = time.Now().UTC() }

// Store holds the open conversation of each logged-in user. A user has at
// most one conversation at a time; opening another topic replaces it.
type Store struct {
	mu    sync.RWMutex
	convs map[string]*Conversation
}

func NewStore() *Store {
	return &Store{convs: make(map[string]*Conversation)}
}

func (s *Store) get(username string) (*Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.convs[username]
	return conv, ok
}

func (s *Store) put(conv *Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[conv.username] = conv
}

// Delete discards a user's conversation, if any.
func (s *Store) Delete(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, username)
}

// DeleteIdle discards conversations idle for longer than ttl and returns how
// many were removed.
func (s *Store) DeleteIdle(ttl time.Duration) int {
	deadline := time.Now().UTC().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for uname, conv := range s.convs {
		conv.mu.Lock()
		idle := conv.lastActivity.Before(deadline)
		conv.mu.Unlock()
		if idle {
			delete(s.convs, uname)
			n++
		}
	}
	return n
}

func (s *Store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs)
}
