package app

import (
	"context"
	"errors"
	"fmt"

	"violet-client/internal/backend"
	"violet-client/internal/model"
	"violet-client/internal/upload"
)

const (
	msgUnsupportedFile = "Only PDF files are supported"
	msgUploadInvalid   = "Please select files and enter a collection name"
	msgUploadFailed    = "Upload failed"
	msgUploadError     = "Upload error. Please try again."
)

// OnProgress registers an observer for upload progress checkpoints.
func (o *Orchestrator) OnProgress(observer ProgressObserver) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progressObservers = append(o.progressObservers, observer)
}

func (o *Orchestrator) OpenUpload() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.session.Authenticated() {
		return ErrNotAuthenticated
	}
	o.pipeline.Open()
	return nil
}

func (o *Orchestrator) CancelUpload() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.session.Authenticated() {
		return ErrNotAuthenticated
	}
	return o.pipeline.Cancel()
}

// SelectFiles keeps the accepted subset of candidates and returns how many
// were rejected. Any rejection raises a single notification.
func (o *Orchestrator) SelectFiles(candidates []model.UploadFile) (int, error) {
	o.mu.Lock()
	if !o.session.Authenticated() {
		o.mu.Unlock()
		return 0, ErrNotAuthenticated
	}
	if o.pipeline.InFlight() {
		o.mu.Unlock()
		return 0, ErrUploadInProgress
	}
	rejected := o.pipeline.SelectFiles(candidates)
	o.mu.Unlock()

	if rejected > 0 {
		o.notifier.Error(msgUnsupportedFile)
	}
	return rejected, nil
}

func (o *Orchestrator) SetCollectionName(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.session.Authenticated() {
		return ErrNotAuthenticated
	}
	if o.pipeline.InFlight() {
		return ErrUploadInProgress
	}
	o.pipeline.SetCollectionName(name)
	return nil
}

// SubmitUpload sends the current batch. On success the new collection becomes
// the selection and the flow closes; on failure the flow stays open with its
// files.
func (o *Orchestrator) SubmitUpload(ctx context.Context) (model.Collection, error) {
	o.mu.Lock()
	if !o.session.Authenticated() {
		o.mu.Unlock()
		return model.Collection{}, ErrNotAuthenticated
	}
	if o.pipeline.InFlight() {
		o.mu.Unlock()
		return model.Collection{}, ErrUploadInProgress
	}
	batch, err := o.pipeline.Prepare()
	if err != nil {
		o.mu.Unlock()
		o.notifier.Error(msgUploadInvalid)
		return model.Collection{}, err
	}
	if err := o.pipeline.Begin(); err != nil {
		o.mu.Unlock()
		return model.Collection{}, err
	}
	token, epoch := o.session.Token(), o.epoch
	o.mu.Unlock()

	o.progress(epoch, upload.ProgressStarted)
	o.progress(epoch, upload.ProgressSending)
	result, err := o.backend.Upload(ctx, token, backend.UploadRequest{
		Files:          batch.Files,
		CollectionName: batch.CollectionName,
		LLMProvider:    o.llmProvider,
		LLMModel:       o.llmModel,
	})
	if err != nil {
		o.settle(epoch, false)
		return model.Collection{}, o.fail("upload", epoch, err, msgUploadFailed, msgUploadError)
	}
	o.progress(epoch, upload.ProgressReceived)

	if err := o.Refresh(ctx); err != nil && !errors.Is(err, ErrNotAuthenticated) {
		o.logger.Warn(logModule, "refresh after upload failed", map[string]interface{}{"error": err})
	}

	o.mu.Lock()
	if !o.currentLocked(epoch) {
		o.mu.Unlock()
		return result.Collection, nil
	}
	generation := o.selectLocked(result.Collection)
	adopted := result.Insights != nil && o.catalog.AdoptInsights(generation, result.Insights)
	o.mu.Unlock()

	if !adopted {
		if err := o.loadInsights(ctx, token, epoch, generation, result.Collection.ID); err != nil {
			o.settle(epoch, false)
			return result.Collection, err
		}
	}

	o.progress(epoch, upload.ProgressDone)
	o.settle(epoch, true)
	o.logger.Info(logModule, "upload completed", map[string]interface{}{
		"collection_id": result.Collection.ID,
		"files":         len(result.UploadedFiles),
	})
	o.notifier.Success(fmt.Sprintf("Successfully uploaded %d file(s)!", len(batch.Files)))
	return result.Collection, nil
}

// progress records a checkpoint and notifies observers outside the lock.
func (o *Orchestrator) progress(epoch uint64, value int) {
	o.mu.Lock()
	if !o.currentLocked(epoch) {
		o.mu.Unlock()
		return
	}
	o.pipeline.SetProgress(value)
	observers := append([]ProgressObserver(nil), o.progressObservers...)
	o.mu.Unlock()

	for _, observer := range observers {
		observer(value)
	}
}

func (o *Orchestrator) settle(epoch uint64, success bool) {
	o.mu.Lock()
	if !o.currentLocked(epoch) {
		o.mu.Unlock()
		return
	}
	o.pipeline.Settle(success)
	observers := append([]ProgressObserver(nil), o.progressObservers...)
	o.mu.Unlock()

	for _, observer := range observers {
		observer(0)
	}
}
