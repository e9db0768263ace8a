package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/curascan/cli/internal/domain"
	"github.com/curascan/cli/internal/ports"
)

// imageExtensions maps the file extensions the scoring service accepts.
// Anything else is rejected before the state machine advances.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// ScreeningWorkflow drives one consent-gated screening attempt at a
// time. Selecting a patient supersedes whatever attempt was in
// progress; a response arriving for a superseded attempt is discarded
// by ID comparison rather than cancellation.
type ScreeningWorkflow struct {
	screening ports.ScreeningAPI
	patients  ports.PatientDirectory
	clock     ports.Clock

	mu      sync.Mutex
	lastID  int64
	attempt *domain.ScreeningAttempt
}

func NewScreeningWorkflow(screening ports.ScreeningAPI, patients ports.PatientDirectory, clock ports.Clock) *ScreeningWorkflow {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ScreeningWorkflow{
		screening: screening,
		patients:  patients,
		clock:     clock,
	}
}

func (w *ScreeningWorkflow) SearchPatients(ctx context.Context, query string) ([]domain.Patient, error) {
	patients, err := w.patients.SearchPatients(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	return patients, nil
}

// SelectPatient starts a fresh attempt, discarding any in-progress one
// entirely. Nothing carries over, including accepted consent.
func (w *ScreeningWorkflow) SelectPatient(patient domain.Patient) *domain.ScreeningAttempt {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastID++
	w.attempt = domain.NewScreeningAttempt(w.lastID, patient, w.clock.Now())
	return w.attempt
}

// Abandon discards the current attempt and returns to patient selection.
func (w *ScreeningWorkflow) Abandon() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempt = nil
}

// RequestImage moves the current attempt into image selection.
func (w *ScreeningWorkflow) RequestImage() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attempt == nil {
		return domain.ErrNoAttempt
	}
	return w.attempt.RequestImage()
}

func (w *ScreeningWorkflow) Current() *domain.ScreeningAttempt {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attempt
}

// StageImageFile validates and reads an image from disk into the current
// attempt. A non-image path fails synchronously without advancing the
// attempt.
func (w *ScreeningWorkflow) StageImageFile(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attempt == nil {
		return domain.ErrNoAttempt
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExtensions[ext]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotAnImage, filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image file: %w", err)
	}

	return w.attempt.StageImage(filepath.Base(path), data)
}

func (w *ScreeningWorkflow) OpenConsent() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attempt == nil {
		return domain.ErrNoAttempt
	}
	return w.attempt.RequestConsent()
}

func (w *ScreeningWorkflow) AcceptConsent(record domain.ConsentRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attempt == nil {
		return domain.ErrNoAttempt
	}
	return w.attempt.AcceptConsent(record, w.clock.Now())
}

func (w *ScreeningWorkflow) DeclineConsent() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attempt == nil {
		return domain.ErrNoAttempt
	}
	return w.attempt.DeclineConsent()
}

func (w *ScreeningWorkflow) Retry() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attempt == nil {
		return domain.ErrNoAttempt
	}
	return w.attempt.Retry()
}

// Submit issues exactly one inference request for the current attempt.
// If the attempt has been superseded by the time the response lands, the
// response is dropped and ErrStaleAttempt returned; the new attempt is
// never touched.
func (w *ScreeningWorkflow) Submit(ctx context.Context, notes string) (domain.InferenceResult, error) {
	w.mu.Lock()
	if w.attempt == nil {
		w.mu.Unlock()
		return domain.InferenceResult{}, domain.ErrNoAttempt
	}
	if err := w.attempt.BeginSubmit(); err != nil {
		w.mu.Unlock()
		return domain.InferenceResult{}, err
	}
	w.attempt.Notes = notes
	attemptID := w.attempt.ID
	req := ports.AnalyzeRequest{
		PatientID:       w.attempt.Patient.ID,
		ImageName:       w.attempt.ImageName,
		ImageData:       w.attempt.ImageData,
		ConsentAccepted: true,
		Notes:           notes,
	}
	w.mu.Unlock()

	result, err := w.screening.Analyze(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attempt == nil || w.attempt.ID != attemptID {
		return domain.InferenceResult{}, domain.ErrStaleAttempt
	}

	if err != nil {
		_ = w.attempt.Fail(err.Error())
		return domain.InferenceResult{}, err
	}

	if completeErr := w.attempt.Complete(result); completeErr != nil {
		return domain.InferenceResult{}, completeErr
	}
	return result, nil
}
