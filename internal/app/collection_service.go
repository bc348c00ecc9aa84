package app

import (
	"context"

	"violet-client/internal/cache"
	"violet-client/internal/model"
)

const (
	msgLoadCollectionsFailed = "Could not load collections"
	msgCollectionDeleted     = "Collection deleted"
	msgDeleteFailed          = "Error deleting collection"
	msgAllDeleted            = "All collections deleted"
	msgLoadTablesFailed      = "Could not load tables"
	msgLoadProvidersFailed   = "Could not load providers"

	promptDeleteCollection = "Are you sure you want to delete this collection?"
	promptDeleteAll        = "Are you sure you want to delete ALL collections? This cannot be undone."
)

// Refresh replaces the catalog with the backend's list. On failure the
// existing list is kept.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	token, epoch, err := o.authorize()
	if err != nil {
		return err
	}

	collections, err := o.backend.ListCollections(ctx, token)
	if err != nil {
		return o.fail("refresh collections", epoch, err, msgLoadCollectionsFailed, msgLoadCollectionsFailed)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.currentLocked(epoch) {
		o.catalog.Replace(collections)
	}
	return nil
}

// Select makes coll active, clears the transcript and insights, and fetches
// insights for it. Only a 401 during the fetch is reported back.
func (o *Orchestrator) Select(ctx context.Context, coll model.Collection) error {
	o.mu.Lock()
	if !o.session.Authenticated() {
		o.mu.Unlock()
		return ErrNotAuthenticated
	}
	generation := o.selectLocked(coll)
	token, epoch := o.session.Token(), o.epoch
	o.mu.Unlock()

	return o.loadInsights(ctx, token, epoch, generation, coll.ID)
}

// SelectByID selects a collection from the current list.
func (o *Orchestrator) SelectByID(ctx context.Context, id int64) error {
	o.mu.Lock()
	coll, ok := o.catalog.Find(id)
	authenticated := o.session.Authenticated()
	o.mu.Unlock()

	if !authenticated {
		return ErrNotAuthenticated
	}
	if !ok {
		return ErrUnknownCollection
	}
	return o.Select(ctx, coll)
}

func (o *Orchestrator) selectLocked(coll model.Collection) uint64 {
	o.chat.Reset()
	return o.catalog.Select(coll)
}

func (o *Orchestrator) loadInsights(ctx context.Context, token string, epoch, generation uint64, id int64) error {
	insights, err := o.backend.Insights(ctx, token, id)
	if err != nil {
		o.logger.Warn(logModule, "load insights failed", map[string]interface{}{"collection_id": id, "error": err})
		if isUnauthorized(err) {
			return o.fail("load insights", epoch, err, "", "")
		}
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.currentLocked(epoch) && !o.catalog.AdoptInsights(generation, insights) {
		o.logger.Debug(logModule, "discarded stale insights", map[string]interface{}{"collection_id": id})
	}
	return nil
}

// Delete removes a collection after confirmation. Deleting the active
// collection clears the selection, transcript and insights.
func (o *Orchestrator) Delete(ctx context.Context, id int64, confirmer Confirmer) error {
	token, epoch, err := o.authorize()
	if err != nil {
		return err
	}
	if confirmer == nil || !confirmer.Confirm(promptDeleteCollection) {
		return ErrNotConfirmed
	}

	if err := o.backend.DeleteCollection(ctx, token, id); err != nil {
		return o.fail("delete collection", epoch, err, msgDeleteFailed, msgDeleteFailed)
	}

	o.mu.Lock()
	if !o.currentLocked(epoch) {
		o.mu.Unlock()
		return nil
	}
	if o.catalog.IsSelected(id) {
		o.catalog.ClearSelection()
		o.chat.Reset()
	}
	o.mu.Unlock()

	o.lookup.Invalidate(cache.TablesKey(id))
	o.logger.Info(logModule, "collection deleted", map[string]interface{}{"collection_id": id})
	o.notifier.Success(msgCollectionDeleted)
	_ = o.Refresh(ctx)
	return nil
}

// DeleteAll removes every collection of the user after confirmation.
func (o *Orchestrator) DeleteAll(ctx context.Context, confirmer Confirmer) (int, error) {
	token, epoch, err := o.authorize()
	if err != nil {
		return 0, err
	}
	if confirmer == nil || !confirmer.Confirm(promptDeleteAll) {
		return 0, ErrNotConfirmed
	}

	result, err := o.backend.DeleteAllCollections(ctx, token)
	if err != nil {
		return 0, o.fail("delete all collections", epoch, err, msgDeleteFailed, msgDeleteFailed)
	}

	o.mu.Lock()
	if !o.currentLocked(epoch) {
		o.mu.Unlock()
		return result.DeletedCount, nil
	}
	o.catalog.ClearSelection()
	o.chat.Reset()
	o.mu.Unlock()

	if len(result.Errors) > 0 {
		o.logger.Warn(logModule, "bulk delete reported errors", map[string]interface{}{"errors": result.Errors})
	}
	o.lookup.Flush()
	message := result.Message
	if message == "" {
		message = msgAllDeleted
	}
	o.notifier.Success(message)
	_ = o.Refresh(ctx)
	return result.DeletedCount, nil
}

// Tables lists the tables extracted from a collection's documents.
func (o *Orchestrator) Tables(ctx context.Context, id int64) ([]model.TableInfo, error) {
	token, epoch, err := o.authorize()
	if err != nil {
		return nil, err
	}
	tables, err := cache.GetOrLoad(ctx, o.lookup, cache.TablesKey(id), func(ctx context.Context) ([]model.TableInfo, error) {
		return o.backend.Tables(ctx, token, id)
	})
	if err != nil {
		return nil, o.fail("list tables", epoch, err, msgLoadTablesFailed, msgConnectionError)
	}
	return append([]model.TableInfo(nil), tables...), nil
}

// Providers lists the answering engines the backend offers. It needs no
// session.
func (o *Orchestrator) Providers(ctx context.Context) ([]model.LLMProvider, error) {
	providers, err := cache.GetOrLoad(ctx, o.lookup, cache.ProvidersKey(), o.backend.LLMProviders)
	if err != nil {
		o.logger.Warn(logModule, "list providers failed", map[string]interface{}{"error": err})
		o.notifier.Error(userMessage(err, msgLoadProvidersFailed, msgConnectionError))
		return nil, err
	}
	return append([]model.LLMProvider(nil), providers...), nil
}
