package app

import (
	"context"

	"violet-client/internal/backend"
)

const (
	msgAnswerFailed = "Failed to get answer"
	msgSendError    = "Error sending question"
)

func (o *Orchestrator) SetDraft(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.session.Authenticated() {
		return ErrNotAuthenticated
	}
	o.chat.SetDraft(text)
	return nil
}

// Send asks question about the selected collection. An empty question sends
// the draft. Blank input, a missing selection and a pending question are
// no-ops reported through the returned error only.
func (o *Orchestrator) Send(ctx context.Context, question string) error {
	o.mu.Lock()
	if !o.session.Authenticated() {
		o.mu.Unlock()
		return ErrNotAuthenticated
	}
	selected, ok := o.catalog.Selected()
	if !ok {
		o.mu.Unlock()
		return ErrNoSelection
	}
	text, ticket, err := o.chat.Ask(question)
	if err != nil {
		o.mu.Unlock()
		return err
	}
	token, epoch := o.session.Token(), o.epoch
	o.mu.Unlock()

	answer, err := o.backend.Chat(ctx, token, backend.ChatRequest{CollectionID: selected.ID, Question: text})
	if err != nil {
		o.mu.Lock()
		live := o.currentLocked(epoch) && o.chat.Fail(ticket)
		o.mu.Unlock()
		if !live && !isUnauthorized(err) {
			o.logger.Debug(logModule, "discarded stale chat failure", map[string]interface{}{"collection_id": selected.ID})
			return err
		}
		return o.fail("send question", epoch, err, msgAnswerFailed, msgSendError)
	}

	o.mu.Lock()
	accepted := o.currentLocked(epoch) && o.chat.Answer(ticket, answer.Answer, answer.Sources, answer.Type)
	o.mu.Unlock()
	if !accepted {
		o.logger.Debug(logModule, "discarded stale answer", map[string]interface{}{"collection_id": selected.ID})
	}
	return nil
}
