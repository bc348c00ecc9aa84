// Package chat holds the transcript and draft for the active collection.
// Each outgoing question takes a ticket; a reply is accepted only while its
// ticket is still the current one.
//
// Session is not safe for concurrent use; the orchestrator serializes access.
package chat

import (
	"errors"
	"strings"
	"time"

	"violet-client/internal/model"
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrChatPending   = errors.New("a question is already awaiting an answer")
)

type Session struct {
	transcript []model.Message
	draft      string
	ticket     uint64
	pending    bool
	now        func() time.Time
}

func NewSession() *Session {
	return &Session{now: time.Now}
}

func (s *Session) SetDraft(text string) {
	s.draft = text
}

func (s *Session) Draft() string {
	return s.draft
}

// Ask appends the user message, clears the draft and returns the ticket for
// the pending reply. An empty question falls back to the draft.
func (s *Session) Ask(question string) (string, uint64, error) {
	if s.pending {
		return "", 0, ErrChatPending
	}
	if strings.TrimSpace(question) == "" {
		question = s.draft
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", 0, ErrEmptyQuestion
	}

	s.transcript = append(s.transcript, model.UserMessage{Content: question, CreatedAt: s.now()})
	s.draft = ""
	s.pending = true
	s.ticket++
	return question, s.ticket, nil
}

// Answer appends the reply if ticket is current.
func (s *Session) Answer(ticket uint64, answer string, sources []model.Source, answerType string) bool {
	if !s.current(ticket) {
		return false
	}
	s.transcript = append(s.transcript, model.AssistantMessage{
		Content:    answer,
		Sources:    append([]model.Source(nil), sources...),
		AnswerType: answerType,
		CreatedAt:  s.now(),
	})
	s.pending = false
	return true
}

// Fail releases the pending mark if ticket is current; the transcript is kept.
func (s *Session) Fail(ticket uint64) bool {
	if !s.current(ticket) {
		return false
	}
	s.pending = false
	return true
}

func (s *Session) current(ticket uint64) bool {
	return s.pending && ticket == s.ticket
}

func (s *Session) Pending() bool {
	return s.pending
}

// Reset empties the transcript and the draft and orphans any pending reply.
func (s *Session) Reset() {
	s.transcript = nil
	s.draft = ""
	s.pending = false
	s.ticket++
}

func (s *Session) Transcript() []model.Message {
	return append([]model.Message(nil), s.transcript...)
}

func (s *Session) Views() []model.MessageView {
	views := make([]model.MessageView, 0, len(s.transcript))
	for _, m := range s.transcript {
		views = append(views, model.ViewOf(m))
	}
	return views
}
