package app

import (
	"errors"

	"violet-client/internal/chat"
	"violet-client/internal/session"
	"violet-client/internal/upload"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNoSelection       = errors.New("no collection selected")
	ErrNotConfirmed      = errors.New("action not confirmed")
	ErrUnknownCollection = errors.New("collection not found")
)

// Validation errors raised by the component stores.
var (
	ErrInvalidCredentials = session.ErrInvalidCredentials
	ErrInvalidUpload      = upload.ErrInvalidUpload
	ErrUploadInProgress   = upload.ErrUploadInProgress
	ErrEmptyQuestion      = chat.ErrEmptyQuestion
	ErrChatPending        = chat.ErrChatPending
)
