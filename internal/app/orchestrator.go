// Package app composes the session store, the collection catalog, the upload
// pipeline, the chat session and the notification queue, and is the only
// caller of the backend.
//
// All state sits behind one mutex that is held for mutation only, never across
// a backend call. Responses are matched back to the state they were issued
// for: a session epoch drops anything that resolves after a logout, the
// catalog generation drops stale insights and the chat ticket drops stale
// replies.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"violet-client/internal/backend"
	"violet-client/internal/cache"
	"violet-client/internal/catalog"
	"violet-client/internal/chat"
	"violet-client/internal/model"
	"violet-client/internal/pkg/logger"
	"violet-client/internal/session"
	"violet-client/internal/storage"
	"violet-client/internal/upload"
)

const logModule = "Orchestrator"

const msgSessionExpired = "Session expired. Please login again."

// Backend is the REST contract the orchestrator depends on.
type Backend interface {
	Login(ctx context.Context, username, password string) (*backend.Token, error)
	Register(ctx context.Context, username, password string) error
	ListCollections(ctx context.Context, token string) ([]model.Collection, error)
	DeleteCollection(ctx context.Context, token string, id int64) error
	DeleteAllCollections(ctx context.Context, token string) (*backend.BulkDeleteResult, error)
	Insights(ctx context.Context, token string, id int64) (*model.Insights, error)
	Tables(ctx context.Context, token string, id int64) ([]model.TableInfo, error)
	LLMProviders(ctx context.Context) ([]model.LLMProvider, error)
	Upload(ctx context.Context, token string, req backend.UploadRequest) (*backend.UploadResult, error)
	Chat(ctx context.Context, token string, req backend.ChatRequest) (*backend.ChatAnswer, error)
}

type Notifier interface {
	Success(message string) model.Notification
	Error(message string) model.Notification
	Current() (model.Notification, bool)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// ProgressObserver receives upload progress checkpoints.
type ProgressObserver func(progress int)

type Options struct {
	Backend           Backend
	Slots             storage.Slots
	Notifier          Notifier
	Logger            logger.ILogger
	Lookup            *cache.Lookup
	LLMProvider       string
	LLMModel          string
	Extension         string
	OpenUploadOnLogin bool
}

type Orchestrator struct {
	mu sync.Mutex
	// slotsMu orders durable slot writes with the in-memory session change
	// they belong to. Acquired before mu, never while holding it.
	slotsMu sync.Mutex

	backend  Backend
	notifier Notifier
	logger   logger.ILogger
	lookup   *cache.Lookup

	session  *session.Store
	catalog  *catalog.Catalog
	pipeline *upload.Pipeline
	chat     *chat.Session

	epoch             uint64
	progressObservers []ProgressObserver

	llmProvider       string
	llmModel          string
	openUploadOnLogin bool
}

func New(opts Options) (*Orchestrator, error) {
	if opts.Backend == nil || opts.Slots == nil || opts.Notifier == nil {
		return nil, errors.New("orchestrator requires backend, slots and notifier")
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	lookup := opts.Lookup
	if lookup == nil {
		lookup = cache.NewLookup(0)
	}
	provider, llmModel := opts.LLMProvider, opts.LLMModel
	if provider == "" {
		provider = "openai"
	}
	if llmModel == "" {
		llmModel = "gpt-4o-mini"
	}
	return &Orchestrator{
		backend:           opts.Backend,
		notifier:          opts.Notifier,
		logger:            log,
		lookup:            lookup,
		session:           session.NewStore(opts.Slots),
		catalog:           catalog.New(),
		pipeline:          upload.NewPipeline(opts.Extension),
		chat:              chat.NewSession(),
		llmProvider:       provider,
		llmModel:          llmModel,
		openUploadOnLogin: opts.OpenUploadOnLogin,
	}, nil
}

// authorize returns the token and epoch of the current session.
func (o *Orchestrator) authorize() (string, uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.session.Authenticated() {
		return "", 0, ErrNotAuthenticated
	}
	return o.session.Token(), o.epoch, nil
}

func (o *Orchestrator) currentLocked(epoch uint64) bool {
	return epoch == o.epoch && o.session.Authenticated()
}

func (o *Orchestrator) current(epoch uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.currentLocked(epoch)
}

// resetLocked tears down everything a session owns and starts a new epoch.
func (o *Orchestrator) resetLocked() {
	o.session.Reset()
	o.clearLocked()
	o.epoch++
}

// clearLocked drops the catalog, transcript and upload flow of the previous
// session.
func (o *Orchestrator) clearLocked() {
	o.catalog.Reset()
	o.chat.Reset()
	o.pipeline.Reset()
}

// fail routes a backend error: 401 expires the session, anything that
// resolved for an older session is dropped, the rest is logged and surfaced.
func (o *Orchestrator) fail(op string, epoch uint64, err error, rejected, transport string) error {
	wrapped := fmt.Errorf("%s failed: %w", op, err)
	if isUnauthorized(err) {
		o.expire(epoch)
		return wrapped
	}
	if !o.current(epoch) {
		return wrapped
	}
	o.logger.Warn(logModule, op+" failed", map[string]interface{}{"error": err})
	o.notifier.Error(userMessage(err, rejected, transport))
	return wrapped
}

// expire forces a logout if epoch is still the live session.
func (o *Orchestrator) expire(epoch uint64) {
	o.slotsMu.Lock()
	o.mu.Lock()
	if !o.currentLocked(epoch) {
		o.mu.Unlock()
		o.slotsMu.Unlock()
		return
	}
	o.resetLocked()
	o.mu.Unlock()

	o.lookup.Flush()
	err := o.session.Forget(context.Background())
	o.slotsMu.Unlock()
	if err != nil {
		o.logger.Error(logModule, "clear expired session failed", map[string]interface{}{"error": err})
	}
	o.logger.Info(logModule, "session expired", nil)
	o.notifier.Error(msgSessionExpired)
}

func userMessage(err error, rejected, transport string) string {
	if detail, ok := backend.Detail(err); ok {
		return detail
	}
	if backend.IsTransport(err) {
		return transport
	}
	return rejected
}

func isUnauthorized(err error) bool {
	return errors.Is(err, backend.ErrUnauthorized)
}

// Username is the signed-in user, or empty.
func (o *Orchestrator) Username() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.Session().Username
}
