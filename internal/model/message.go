package model

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Implementations are UserMessage and
// AssistantMessage; only the assistant carries sources and an answer type.
type Message interface {
	Role() Role
	Text() string
	SentAt() time.Time
}

type UserMessage struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (m UserMessage) Role() Role        { return RoleUser }
func (m UserMessage) Text() string      { return m.Content }
func (m UserMessage) SentAt() time.Time { return m.CreatedAt }

type AssistantMessage struct {
	Content    string    `json:"content"`
	Sources    []Source  `json:"sources"`
	AnswerType string    `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m AssistantMessage) Role() Role        { return RoleAssistant }
func (m AssistantMessage) Text() string      { return m.Content }
func (m AssistantMessage) SentAt() time.Time { return m.CreatedAt }

// Source is a retrieved passage the assistant's answer was grounded on.
type Source struct {
	Source         string  `json:"source"`
	Page           int     `json:"page"`
	FilePath       string  `json:"file_path"`
	RelevanceScore float64 `json:"relevance_score"`
	TextPreview    string  `json:"text_preview"`
}

// MessageView is the flattened JSON shape of a Message used by presentations.
type MessageView struct {
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Sources    []Source  `json:"sources,omitempty"`
	AnswerType string    `json:"type,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func ViewOf(m Message) MessageView {
	view := MessageView{Role: m.Role(), Content: m.Text(), CreatedAt: m.SentAt()}
	if a, ok := m.(AssistantMessage); ok {
		view.Sources = append([]Source(nil), a.Sources...)
		view.AnswerType = a.AnswerType
	}
	return view
}
