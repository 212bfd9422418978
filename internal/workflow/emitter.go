package workflow

import "sync"

const (
	EventChatToken     = "chat_token"
	EventDiscoveryDone = "discovery_done"
	EventChatDone      = "chat_done"
	EventError         = "error"
)

// GenericError is the only failure text that reaches clients.
const GenericError = "Something went wrong"

type Event struct {
	Type    string `json:"type"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

type Emitter interface {
	Emit(Event)
}

type EmitterFunc func(Event)

func (f EmitterFunc) Emit(e Event) { f(e) }

// stream guards an Emitter so that exactly one terminal event is sent and
// nothing follows it.
type stream struct {
	mu   sync.Mutex
	out  Emitter
	done bool
}

func newStream(out Emitter) *stream {
	return &stream{out: out}
}

func (s *stream) emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	if e.Type == EventChatDone || e.Type == EventError {
		s.done = true
	}
	s.out.Emit(e)
}

func (s *stream) token(v string) {
	if v == "" {
		return
	}
	s.emit(Event{Type: EventChatToken, Value: v})
}

func (s *stream) discoveryDone(v any) { s.emit(Event{Type: EventDiscoveryDone, Value: v}) }

func (s *stream) finish() { s.emit(Event{Type: EventChatDone}) }

func (s *stream) fail(msg string) { s.emit(Event{Type: EventError, Message: msg}) }
