// Package upload holds the state of the multi-file upload flow.
//
// Pipeline is not safe for concurrent use; the orchestrator serializes access.
package upload

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"violet-client/internal/model"
)

var (
	ErrInvalidUpload    = errors.New("files and collection name are required")
	ErrUploadInProgress = errors.New("an upload is already in progress")
)

// Progress checkpoints reported while a batch is submitted.
const (
	ProgressStarted  = 10
	ProgressSending  = 30
	ProgressReceived = 70
	ProgressDone     = 100
)

// Batch is a validated submission.
type Batch struct {
	Files          []model.UploadFile `validate:"min=1,dive,required"`
	CollectionName string             `validate:"required"`
}

type State struct {
	Open           bool     `json:"open"`
	FileNames      []string `json:"file_names"`
	CollectionName string   `json:"collection_name"`
	Progress       int      `json:"progress"`
	InFlight       bool     `json:"in_flight"`
}

type Pipeline struct {
	extension string
	validate  *validator.Validate
	open      bool
	files     []model.UploadFile
	name      string
	progress  int
	inFlight  bool
}

// NewPipeline accepts files whose name ends with extension, compared
// case-insensitively.
func NewPipeline(extension string) *Pipeline {
	if extension == "" {
		extension = ".pdf"
	}
	return &Pipeline{extension: strings.ToLower(extension), validate: validator.New()}
}

func (p *Pipeline) Open() {
	p.open = true
}

// Cancel closes the flow and discards the selection.
func (p *Pipeline) Cancel() error {
	if p.inFlight {
		return ErrUploadInProgress
	}
	p.open = false
	p.files = nil
	p.name = ""
	p.progress = 0
	return nil
}

// SelectFiles replaces the selection with the accepted subset of candidates
// and returns how many were rejected.
func (p *Pipeline) SelectFiles(candidates []model.UploadFile) int {
	accepted := make([]model.UploadFile, 0, len(candidates))
	for _, f := range candidates {
		if f != nil && strings.HasSuffix(strings.ToLower(f.Name()), p.extension) {
			accepted = append(accepted, f)
		}
	}
	p.files = accepted
	return len(candidates) - len(accepted)
}

func (p *Pipeline) SetCollectionName(name string) {
	p.name = name
}

// Prepare validates the current selection and returns the batch to send.
func (p *Pipeline) Prepare() (Batch, error) {
	batch := Batch{
		Files:          append([]model.UploadFile(nil), p.files...),
		CollectionName: strings.TrimSpace(p.name),
	}
	if err := p.validate.Struct(batch); err != nil {
		return Batch{}, ErrInvalidUpload
	}
	return batch, nil
}

// Begin marks a submission in flight.
func (p *Pipeline) Begin() error {
	if p.inFlight {
		return ErrUploadInProgress
	}
	p.inFlight = true
	p.progress = ProgressStarted
	return nil
}

func (p *Pipeline) SetProgress(progress int) {
	p.progress = progress
}

// Settle ends the submission. A successful one closes the flow.
func (p *Pipeline) Settle(success bool) {
	p.inFlight = false
	p.progress = 0
	if success {
		p.open = false
		p.files = nil
		p.name = ""
	}
}

func (p *Pipeline) InFlight() bool {
	return p.inFlight
}

func (p *Pipeline) Progress() int {
	return p.progress
}

// Reset drops everything, including an in-flight mark.
func (p *Pipeline) Reset() {
	p.open = false
	p.files = nil
	p.name = ""
	p.progress = 0
	p.inFlight = false
}

func (p *Pipeline) State() State {
	names := make([]string, 0, len(p.files))
	for _, f := range p.files {
		names = append(names, f.Name())
	}
	return State{
		Open:           p.open,
		FileNames:      names,
		CollectionName: p.name,
		Progress:       p.progress,
		InFlight:       p.inFlight,
	}
}
