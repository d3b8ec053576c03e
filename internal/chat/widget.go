package chat

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/volvot/internal/apperr"
	"github.com/dgnsrekt/volvot/internal/state"
)

// MaxTranscript bounds the number of retained transcript messages.
const MaxTranscript = 200

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleGuide Role = "ai"
)

// Message is one transcript entry.
type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Topic   string    `json:"topic,omitempty"`
	At      time.Time `json:"at"`
}

// Widget is the conversational front end of the guide. The transcript is
// kept for display only; replies never depend on it.
type Widget struct {
	responder *Responder
	store     *state.Store
	now       func() time.Time

	mu         sync.Mutex
	transcript []Message
}

// NewWidget creates a widget answering from the given store.
func NewWidget(responder *Responder, store *state.Store) *Widget {
	return &Widget{responder: responder, store: store, now: time.Now}
}

// Send records message and the guide's reply and returns the reply.
func (w *Widget) Send(message string, section Section) (Message, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Message{}, apperr.Validation("message must not be empty")
	}
	if _, ok := ParseSection(string(section)); !ok {
		section = SectionHero
	}

	topic, reply := w.responder.Respond(message, section, FactsFrom(w.store.Get()))
	now := w.now().UTC()
	out := Message{Role: RoleGuide, Content: reply, Topic: topic, At: now}
	w.append(Message{Role: RoleUser, Content: message, At: now}, out)
	return out, nil
}

// Tutorial posts a scripted tutorial into the transcript.
func (w *Widget) Tutorial(name string) (Message, error) {
	body, ok := w.responder.Tutorial(name, FactsFrom(w.store.Get()))
	if !ok {
		msg := fmt.Sprintf("unknown tutorial %q (available: %s)", name, strings.Join(w.responder.TutorialNames(), ", "))
		return Message{}, apperr.New(apperr.CodeNotFound, msg, nil)
	}
	out := Message{Role: RoleGuide, Content: body, Topic: "tutorial/" + name, At: w.now().UTC()}
	w.append(out)
	return out, nil
}

// Context returns the help card for section.
func (w *Widget) Context(section Section) Card {
	return w.responder.Card(section)
}

// Transcript returns a copy of the conversation so far.
func (w *Widget) Transcript() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Message(nil), w.transcript...)
}

func (w *Widget) append(msgs ...Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.transcript = append(w.transcript, msgs...)
	if over := len(w.transcript) - MaxTranscript; over > 0 {
		w.transcript = append([]Message(nil), w.transcript[over:]...)
	}
}
