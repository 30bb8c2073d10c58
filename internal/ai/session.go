package ai

import (
	"context"
	"strings"
	"sync"
)

// DispatcherFactory builds a Dispatcher for a config. NewDispatcher is the
// production factory.
type DispatcherFactory func(AIConfig, ...Option) (Dispatcher, error)

// Session is one chat conversation about a page. Asks are serialized: a
// second Ask waits for the first to finish so answers and history stay in
// order.
type Session struct {
	mu       sync.Mutex
	configs  *ConfigStore
	context  string
	history  []Turn
	opts     []Option
	dispatch DispatcherFactory
}

type SessionOption func(*Session)

// WithDispatchOptions forwards options to every dispatcher the session builds.
func WithDispatchOptions(opts ...Option) SessionOption {
	return func(s *Session) { s.opts = append(s.opts, opts...) }
}

func WithDispatcherFactory(f DispatcherFactory) SessionOption {
	return func(s *Session) { s.dispatch = f }
}

func NewSession(configs *ConfigStore, pageContext string, opts ...SessionOption) *Session {
	s := &Session{configs: configs, context: pageContext, dispatch: NewDispatcher}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ask reads the active config, sends the prompt and records the exchange.
// History only grows when the call succeeds.
func (s *Session) Ask(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.dispatch(s.configs.Get(), s.opts...)
	if err != nil {
		return "", err
	}
	answer, err := d.Send(ctx, BuildPrompt(s.context, s.history, message))
	if err != nil {
		return "", err
	}
	s.history = append(s.history,
		Turn{Role: "user", Content: message},
		Turn{Role: "assistant", Content: strings.TrimSuffix(answer, TrimmedSuffix)},
	)
	return answer, nil
}

// History returns a copy of the recorded turns.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.history...)
}

// SetContext replaces the page excerpt, for example after the page reloads.
func (s *Session) SetContext(pageContext string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = pageContext
}
