package domain

import (
	"fmt"
	"math"
	"time"
)

type AttemptState string

const (
	AttemptPatientSelected AttemptState = "patient_selected"
	AttemptAwaitingImage   AttemptState = "awaiting_image"
	AttemptImageStaged     AttemptState = "image_staged"
	AttemptAwaitingConsent AttemptState = "awaiting_consent"
	AttemptConsentAccepted AttemptState = "consent_accepted"
	AttemptSubmitting      AttemptState = "submitting"
	AttemptSucceeded       AttemptState = "succeeded"
	AttemptFailed          AttemptState = "failed"
)

// ScreeningAttempt is one end-to-end cycle from patient selection to
// inference result for a single image. The attempt ID is monotonically
// increasing within a workflow so late responses from a superseded
// attempt can be recognized and dropped.
type ScreeningAttempt struct {
	ID        int64
	Patient   Patient
	ImageName string
	ImageData []byte
	Consent   *ConsentRecord
	State     AttemptState
	Result    *InferenceResult
	FailedFor string
	Notes     string
	StartedAt time.Time
}

func NewScreeningAttempt(id int64, patient Patient, startedAt time.Time) *ScreeningAttempt {
	return &ScreeningAttempt{
		ID:        id,
		Patient:   patient,
		State:     AttemptPatientSelected,
		StartedAt: startedAt,
	}
}

// RequestImage moves a fresh attempt into image selection.
func (a *ScreeningAttempt) RequestImage() error {
	if a.State != AttemptPatientSelected {
		return &TransitionError{Op: "request image", From: a.State}
	}
	a.State = AttemptAwaitingImage
	return nil
}

// StageImage attaches validated image bytes. Staging a new image for a
// consented attempt would change the consent subject, so it is only
// legal before the gate opens.
func (a *ScreeningAttempt) StageImage(name string, data []byte) error {
	switch a.State {
	case AttemptPatientSelected, AttemptAwaitingImage, AttemptImageStaged:
	default:
		return &TransitionError{Op: "stage image", From: a.State}
	}
	a.ImageName = name
	a.ImageData = data
	a.Consent = nil
	a.State = AttemptImageStaged
	return nil
}

// RequestConsent opens the gate with a fresh, unarmed record for this
// attempt's subject. Any prior acceptance is discarded.
func (a *ScreeningAttempt) RequestConsent() error {
	if a.State != AttemptImageStaged {
		return &TransitionError{Op: "request consent", From: a.State}
	}
	record := NewConsentRecord(a.Patient.FullName)
	a.Consent = &record
	a.State = AttemptAwaitingConsent
	return nil
}

// AcceptConsent records the acknowledgment if and only if the gate is
// satisfied. An unsatisfied record leaves the attempt awaiting consent.
func (a *ScreeningAttempt) AcceptConsent(record ConsentRecord, at time.Time) error {
	if a.State != AttemptAwaitingConsent {
		return &TransitionError{Op: "accept consent", From: a.State}
	}
	if !record.Satisfied() {
		return ErrConsentNotGiven
	}
	record.AcceptedAt = at
	a.Consent = &record
	a.State = AttemptConsentAccepted
	return nil
}

// DeclineConsent cancels the pending analysis outright: the staged image
// and the consent record are discarded, not merely hidden.
func (a *ScreeningAttempt) DeclineConsent() error {
	if a.State != AttemptAwaitingConsent {
		return &TransitionError{Op: "decline consent", From: a.State}
	}
	a.ImageName = ""
	a.ImageData = nil
	a.Consent = nil
	a.State = AttemptPatientSelected
	return nil
}

// BeginSubmit marks the single in-flight submission for this attempt.
// It is legal from ConsentAccepted, and from ImageStaged only when the
// attempt already carries an accepted consent (a retry of the same
// subject/image pair does not demand a second acknowledgment).
func (a *ScreeningAttempt) BeginSubmit() error {
	if a.State == AttemptSubmitting {
		return ErrSubmissionInFlight
	}
	switch a.State {
	case AttemptConsentAccepted:
	case AttemptImageStaged:
		if a.Consent == nil || !a.Consent.Satisfied() {
			return ErrConsentNotGiven
		}
	default:
		return &TransitionError{Op: "submit", From: a.State}
	}
	a.State = AttemptSubmitting
	return nil
}

// Complete stores the result and terminates the attempt.
func (a *ScreeningAttempt) Complete(result InferenceResult) error {
	if a.State != AttemptSubmitting {
		return &TransitionError{Op: "complete", From: a.State}
	}
	a.Result = &result
	a.FailedFor = ""
	a.State = AttemptSucceeded
	return nil
}

// Fail records a retryable failure. The staged image and any accepted
// consent are kept so the same attempt can be resubmitted as-is.
func (a *ScreeningAttempt) Fail(reason string) error {
	if a.State != AttemptSubmitting {
		return &TransitionError{Op: "fail", From: a.State}
	}
	a.FailedFor = reason
	a.State = AttemptFailed
	return nil
}

// Retry returns a failed attempt to ImageStaged with image and consent
// intact.
func (a *ScreeningAttempt) Retry() error {
	if a.State != AttemptFailed {
		return &TransitionError{Op: "retry", From: a.State}
	}
	a.FailedFor = ""
	a.State = AttemptImageStaged
	return nil
}

type Classification string

const (
	ClassBenign    Classification = "benign"
	ClassMalignant Classification = "malignant"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// RiskLevelForMalignancy buckets a malignant probability (0-100) the way
// the scoring service does.
func RiskLevelForMalignancy(malignantPct float64) RiskLevel {
	switch {
	case malignantPct >= 70:
		return RiskVeryHigh
	case malignantPct >= 50:
		return RiskHigh
	case malignantPct >= 30:
		return RiskModerate
	default:
		return RiskLow
	}
}

func (r RiskLevel) Label() string {
	switch r {
	case RiskVeryHigh:
		return "Very High Risk"
	case RiskHigh:
		return "High Risk"
	case RiskModerate:
		return "Moderate Risk"
	case RiskLow:
		return "Low Risk"
	}
	return string(r)
}

// probabilitySumTolerance bounds how far benign+malignant may drift from
// 100 before the result is flagged as a data-integrity anomaly.
const probabilitySumTolerance = 0.5

// InferenceResult is the scoring service's verdict for one image.
// Immutable once received; owned by the attempt that requested it.
type InferenceResult struct {
	ScanID               string
	PredictedClass       Classification
	Confidence           float64
	RiskLevel            RiskLevel
	BenignProbability    float64
	MalignantProbability float64
}

// IntegritySuspect reports whether the class probabilities fail to sum
// to 100 within rounding tolerance. A suspect result is still shown,
// visibly flagged, since the scoring service is outside this client's
// control.
func (r InferenceResult) IntegritySuspect() bool {
	return math.Abs(r.BenignProbability+r.MalignantProbability-100) > probabilitySumTolerance
}

// Summary renders the verdict in the fixed one-decimal display policy,
// e.g. "Benign, 93.2% confidence".
func (r InferenceResult) Summary() string {
	return fmt.Sprintf("%s, %s confidence", r.PredictedClass.Label(), FormatPercent(r.Confidence))
}

func (c Classification) Label() string {
	switch c {
	case ClassBenign:
		return "Benign"
	case ClassMalignant:
		return "Malignant"
	}
	return string(c)
}

// FormatPercent renders a probability or confidence to one decimal place.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
