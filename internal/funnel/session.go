package funnel

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Routes the funnel hands navigation off to.
const (
	RouteHome      = "/"
	RouteDashboard = "/dashboard"
)

var (
	ErrUnknownOption   = errors.New("option not offered by current question")
	ErrFinished        = errors.New("funnel already finished")
	ErrSessionNotFound = errors.New("session not found")
)

// Outcome is the result of a navigation step. Route is empty when the user
// stays inside the funnel.
type Outcome struct {
	Route    string `json:"route,omitempty"`
	Finished bool   `json:"finished"`
}

// State is a point-in-time view of a Session.
type State struct {
	ID       string   `json:"id"`
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Question Question `json:"question"`
	Selected string   `json:"selected"`
	Answers  []string `json:"answers"`
	Finished bool     `json:"finished"`
	IsLast   bool     `json:"is_last"`
}

// Session walks one user through the quiz. Unanswered questions hold "".
type Session struct {
	id   string
	quiz Quiz

	mu       sync.Mutex
	index    int
	answers  []string
	finished bool
}

// NewSession starts a session on the first question.
func NewSession(q Quiz) *Session {
	return &Session{
		id:      uuid.NewString(),
		quiz:    q,
		answers: make([]string, q.Len()),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns a copy of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	answers := make([]string, len(s.answers))
	copy(answers, s.answers)
	return State{
		ID:       s.id,
		Index:    s.index,
		Total:    s.quiz.Len(),
		Question: s.quiz.Questions[s.index],
		Selected: s.answers[s.index],
		Answers:  answers,
		Finished: s.finished,
		IsLast:   s.index == s.quiz.Len()-1,
	}
}

// Select records option as the answer to the current question.
func (s *Session) Select(option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return ErrFinished
	}
	q := s.quiz.Questions[s.index]
	if !q.HasOption(option) {
		return fmt.Errorf("%w: %q (question %d)", ErrUnknownOption, option, q.ID)
	}
	s.answers[s.index] = option
	return nil
}

// Next advances to the following question, or finishes the funnel on the
// last one. A selection is not required to move on.
func (s *Session) Next() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return Outcome{}, ErrFinished
	}
	if s.index < s.quiz.Len()-1 {
		s.index++
		return Outcome{}, nil
	}
	s.finished = true
	return Outcome{Route: RouteDashboard, Finished: true}, nil
}

// Back returns to the previous question, or leaves the funnel for the home
// page from the first one.
func (s *Session) Back() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return Outcome{}, ErrFinished
	}
	if s.index > 0 {
		s.index--
		return Outcome{}, nil
	}
	return Outcome{Route: RouteHome}, nil
}

// Answers returns the recorded answers in question order.
func (s *Session) Answers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.answers))
	copy(out, s.answers)
	return out
}

// Store keeps sessions in memory.
type Store struct {
	quiz Quiz

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty store handing out sessions over q.
func NewStore(q Quiz) *Store {
	return &Store{
		quiz:     q,
		sessions: make(map[string]*Session),
	}
}

// Quiz returns the questions sessions are created with.
func (st *Store) Quiz() Quiz {
	return st.quiz
}

// Create starts and registers a new session.
func (st *Store) Create() *Session {
	s := NewSession(st.quiz)
	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s
}

// Get looks up a session by id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
