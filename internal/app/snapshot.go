package app

import (
	"violet-client/internal/model"
	"violet-client/internal/session"
	"violet-client/internal/upload"
)

// Snapshot is an immutable copy of the orchestrator state for presentations.
type Snapshot struct {
	Session      model.Session       `json:"session"`
	AuthForm     session.Form        `json:"auth_form"`
	Collections  []model.Collection  `json:"collections"`
	Selected     *model.Collection   `json:"selected,omitempty"`
	Insights     *model.Insights     `json:"insights,omitempty"`
	Transcript   []model.MessageView `json:"transcript"`
	Draft        string              `json:"draft"`
	ChatPending  bool                `json:"chat_pending"`
	Upload       upload.State        `json:"upload"`
	Notification *model.Notification `json:"notification,omitempty"`
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	snap := Snapshot{
		Session:     o.session.Session(),
		AuthForm:    o.session.Form(),
		Collections: o.catalog.Collections(),
		Insights:    o.catalog.Insights(),
		Transcript:  o.chat.Views(),
		Draft:       o.chat.Draft(),
		ChatPending: o.chat.Pending(),
		Upload:      o.pipeline.State(),
	}
	if selected, ok := o.catalog.Selected(); ok {
		snap.Selected = &selected
	}
	o.mu.Unlock()

	if n, ok := o.notifier.Current(); ok {
		snap.Notification = &n
	}
	return snap
}
