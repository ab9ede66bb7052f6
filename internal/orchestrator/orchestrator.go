// Package orchestrator drives the lifecycle of a single conversion: file
// intake, format negotiation, the upload-then-convert exchange, and a
// synthetic progress timeline for UI feedback.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"docmorph/internal/catalog"
	"docmorph/internal/domain"
	apperrors "docmorph/pkg/errors"
)

// ErrSuperseded is returned when a response arrives for an attempt that
// was reset or replaced while in flight. The late result is discarded.
var ErrSuperseded = errors.New("conversion superseded by reset or new selection")

// Observer receives a state snapshot after every transition and progress
// update.
type Observer func(domain.ConversionSession)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProgressInterval overrides the synthetic progress tick interval.
func WithProgressInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.progressInterval = d }
}

// WithMaxFileSize overrides the local upload size limit.
func WithMaxFileSize(limit int64) Option {
	return func(o *Orchestrator) { o.maxFileSize = limit }
}

// Orchestrator owns one conversion at a time. All state is mutated
// exclusively through its methods; the state machine, not a caller-side
// lock, serializes conversions. A monotonically increasing attempt token
// keeps late responses from older submissions out of newer state.
type Orchestrator struct {
	backend          domain.Backend
	logger           domain.Logger
	sessionID        string
	maxFileSize      int64
	progressInterval time.Duration

	mu           sync.Mutex
	phase        domain.Phase
	file         *domain.FileInfo
	targets      []domain.FormatTarget
	suggestion   *domain.FormatTarget
	outputFormat string
	options      domain.AdvancedOptions
	remoteFileID string
	resultURL    string
	sessionURL   string
	lastErr      error
	progress     int
	token        uint64
	observer     Observer
	stopProgress chan struct{}
}

// New creates an orchestrator bound to a backend and a session identifier.
func New(backend domain.Backend, sessionID string, logger domain.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:          backend,
		logger:           logger,
		sessionID:        sessionID,
		maxFileSize:      domain.MaxUploadBytes,
		progressInterval: 300 * time.Millisecond,
		phase:            domain.PhaseIdle,
		options:          domain.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetObserver registers the presentation callback. Snapshots are delivered
// outside the orchestrator lock.
func (o *Orchestrator) SetObserver(fn Observer) {
	o.mu.Lock()
	o.observer = fn
	o.mu.Unlock()
}

// SelectFile validates and stores the file the user picked, computes its
// valid targets, and moves to the file-selected state. Oversized and
// unsupported files are refused without changing phase.
func (o *Orchestrator) SelectFile(file domain.FileInfo) error {
	o.mu.Lock()
	if o.phase == domain.PhaseUploading || o.phase == domain.PhaseConverting {
		o.mu.Unlock()
		return apperrors.NewValidationError("a conversion is in progress, reset it first")
	}

	if file.SizeBytes > o.maxFileSize {
		err := apperrors.NewFileTooLarge(file.SizeBytes, o.maxFileSize)
		o.lastErr = err
		o.mu.Unlock()
		o.notify()
		return err
	}

	ext := catalog.ExtOf(file.Name)
	targets := catalog.ValidTargets(ext)
	if len(targets) == 0 {
		err := apperrors.NewUnsupportedFormat(fmt.Sprintf("no conversions available for %q files", ext))
		o.lastErr = err
		o.mu.Unlock()
		o.notify()
		return err
	}

	o.token++
	o.stopProgressLocked()
	o.file = &file
	o.targets = targets
	o.suggestion = nil
	if hint, ok := catalog.SuggestTarget(file.Name); ok {
		o.suggestion = &hint
	}
	o.outputFormat = ""
	o.remoteFileID = ""
	o.resultURL = ""
	o.sessionURL = ""
	o.lastErr = nil
	o.progress = 0
	o.phase = domain.PhaseFileSelected
	o.mu.Unlock()

	o.logger.Debug("File selected", "name", file.Name, "size", file.SizeBytes)
	o.notify()
	return nil
}

// Targets returns the output formats valid for the selected file.
func (o *Orchestrator) Targets() []domain.FormatTarget {
	o.mu.Lock()
	defer o.mu.Unlock()
	targets := make([]domain.FormatTarget, len(o.targets))
	copy(targets, o.targets)
	return targets
}

// Suggestion returns the cosmetic file-name based format hint, if any.
func (o *Orchestrator) Suggestion() (domain.FormatTarget, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.suggestion == nil {
		return domain.FormatTarget{}, false
	}
	return *o.suggestion, true
}

// RequestConversion uploads the selected file and asks the service to
// convert it, moving through uploading and converting to a terminal
// state. Valid from the file-selected state, or from failed for a retry
// with the same file. A second call while one is in flight is refused
// without issuing any network traffic.
func (o *Orchestrator) RequestConversion(ctx context.Context, outputFormat string, options domain.AdvancedOptions) error {
	o.mu.Lock()
	switch o.phase {
	case domain.PhaseFileSelected, domain.PhaseFailed:
	case domain.PhaseUploading, domain.PhaseConverting:
		o.mu.Unlock()
		return apperrors.NewValidationError("another conversion is already in flight")
	default:
		o.mu.Unlock()
		return apperrors.NewValidationError("select a file before converting")
	}

	if outputFormat == "" {
		o.mu.Unlock()
		return apperrors.NewUnsupportedFormat("no output format selected")
	}
	normalized := catalog.NormalizeExt(outputFormat)
	if !o.targetValidLocked(normalized) {
		o.mu.Unlock()
		return apperrors.NewUnsupportedFormat(fmt.Sprintf("cannot convert %q to %q", catalog.ExtOf(o.file.Name), normalized))
	}

	token := o.token
	file := *o.file
	o.outputFormat = normalized
	o.options = normalizeOptions(options)
	o.remoteFileID = ""
	o.resultURL = ""
	o.sessionURL = ""
	o.lastErr = nil
	o.phase = domain.PhaseUploading
	o.progress = 10
	stop := make(chan struct{})
	o.stopProgress = stop
	request := domain.ConvertRequest{
		OutputFormat: normalized,
		SessionID:    o.sessionID,
		Options:      o.options,
	}
	o.mu.Unlock()

	o.notify()
	go o.runProgress(token, stop)

	content, err := os.Open(file.Path)
	if err != nil {
		return o.fail(token, apperrors.NewValidationError("could not open the selected file: "+err.Error()))
	}
	defer content.Close()

	uploadResult, err := o.upload(ctx, file, content)
	if err != nil {
		return o.fail(token, err)
	}

	o.mu.Lock()
	if token != o.token || o.phase != domain.PhaseUploading {
		o.mu.Unlock()
		return ErrSuperseded
	}
	o.remoteFileID = uploadResult.FileID
	o.phase = domain.PhaseConverting
	if o.progress < 40 {
		o.progress = 40
	}
	request.FileID = uploadResult.FileID
	o.mu.Unlock()
	o.notify()

	convertResult, err := o.backend.Convert(ctx, request)
	if err != nil {
		return o.fail(token, err)
	}

	o.mu.Lock()
	if token != o.token || o.phase != domain.PhaseConverting {
		o.mu.Unlock()
		return ErrSuperseded
	}
	o.resultURL = convertResult.URL
	o.sessionURL = convertResult.SessionURL
	o.phase = domain.PhaseSucceeded
	o.progress = 100
	o.stopProgressLocked()
	o.mu.Unlock()

	o.logger.Info("Conversion succeeded", "output_format", normalized, "url", convertResult.URL)
	o.notify()
	return nil
}

// Reset clears all conversion state from any phase and returns to idle.
// In-flight network calls are not aborted; their responses are discarded
// via the attempt token.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.token++
	o.stopProgressLocked()
	o.phase = domain.PhaseIdle
	o.file = nil
	o.targets = nil
	o.suggestion = nil
	o.outputFormat = ""
	o.options = domain.DefaultOptions()
	o.remoteFileID = ""
	o.resultURL = ""
	o.sessionURL = ""
	o.lastErr = nil
	o.progress = 0
	o.mu.Unlock()
	o.notify()
}

// Snapshot returns a copy of the current session state.
func (o *Orchestrator) Snapshot() domain.ConversionSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// InFlight reports whether an upload or conversion is outstanding. Used
// by the auth layer to suspend its gating during an anonymous trial
// conversion.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase == domain.PhaseUploading || o.phase == domain.PhaseConverting
}

func (o *Orchestrator) upload(ctx context.Context, file domain.FileInfo, content io.Reader) (*domain.UploadResult, error) {
	result, err := o.backend.Upload(ctx, o.sessionID, file.Name, file.SizeBytes, content)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// fail records a classified error as the terminal state of the attempt,
// unless the attempt has been superseded.
func (o *Orchestrator) fail(token uint64, err error) error {
	o.mu.Lock()
	if token != o.token || (o.phase != domain.PhaseUploading && o.phase != domain.PhaseConverting) {
		o.mu.Unlock()
		return ErrSuperseded
	}
	o.phase = domain.PhaseFailed
	o.lastErr = err
	o.stopProgressLocked()
	o.mu.Unlock()

	o.logger.Error("Conversion failed", err)
	o.notify()
	return err
}

// runProgress advances the synthetic timeline while a phase is in flight:
// up to 25 during upload, up to 80 during conversion. The percentages are
// advisory UI feedback, not a byte-level completion estimate. Ticks after
// a terminal transition or for a stale token are discarded.
func (o *Orchestrator) runProgress(token uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(o.progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			o.mu.Lock()
			if token != o.token {
				o.mu.Unlock()
				return
			}
			var ceiling int
			switch o.phase {
			case domain.PhaseUploading:
				ceiling = 25
			case domain.PhaseConverting:
				ceiling = 80
			default:
				o.mu.Unlock()
				return
			}
			if o.progress >= ceiling {
				o.mu.Unlock()
				continue
			}
			o.progress += 5
			if o.progress > ceiling {
				o.progress = ceiling
			}
			o.mu.Unlock()
			o.notify()
		}
	}
}

func (o *Orchestrator) stopProgressLocked() {
	if o.stopProgress != nil {
		close(o.stopProgress)
		o.stopProgress = nil
	}
}

func (o *Orchestrator) targetValidLocked(format string) bool {
	for _, t := range o.targets {
		if t.Value == format {
			return true
		}
	}
	return false
}

func (o *Orchestrator) snapshotLocked() domain.ConversionSession {
	snapshot := domain.ConversionSession{
		SessionID:    o.sessionID,
		OutputFormat: o.outputFormat,
		Options:      o.options,
		Phase:        o.phase,
		Progress:     o.progress,
		RemoteFileID: o.remoteFileID,
		ResultURL:    o.resultURL,
		SessionURL:   o.sessionURL,
		LastError:    o.lastErr,
	}
	if o.file != nil {
		file := *o.file
		snapshot.SelectedFile = &file
	}
	return snapshot
}

func (o *Orchestrator) notify() {
	o.mu.Lock()
	fn := o.observer
	snapshot := o.snapshotLocked()
	o.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

// normalizeOptions fills unset option fields with the defaults.
func normalizeOptions(options domain.AdvancedOptions) domain.AdvancedOptions {
	defaults := domain.DefaultOptions()
	if options.Compression == "" {
		options.Compression = defaults.Compression
	}
	if options.ImageQuality == 0 {
		options.ImageQuality = defaults.ImageQuality
	}
	if options.ImageResolution == 0 {
		options.ImageResolution = defaults.ImageResolution
	}
	if options.TextEncoding == "" {
		options.TextEncoding = defaults.TextEncoding
	}
	return options
}
