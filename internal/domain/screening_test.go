package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAttempt(t *testing.T) *ScreeningAttempt {
	t.Helper()
	patient := Patient{ID: "pat-1", FullName: "Jane Doe", MedicalRecordNumber: "MRN-100"}
	return NewScreeningAttempt(1, patient, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
}

func acceptedConsent(subject string) ConsentRecord {
	return ConsentRecord{SubjectName: subject, Affirmed: true, ChallengeText: "I Understand"}
}

func TestAttemptHappyPath(t *testing.T) {
	t.Parallel()

	attempt := newTestAttempt(t)
	require.Equal(t, AttemptPatientSelected, attempt.State)

	require.NoError(t, attempt.RequestImage())
	require.NoError(t, attempt.StageImage("scan.jpg", []byte("jpeg-bytes")))
	require.Equal(t, AttemptImageStaged, attempt.State)

	require.NoError(t, attempt.RequestConsent())
	require.Equal(t, AttemptAwaitingConsent, attempt.State)
	require.NotNil(t, attempt.Consent)
	assert.False(t, attempt.Consent.Affirmed, "gate must arm unchecked")

	at := time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)
	require.NoError(t, attempt.AcceptConsent(acceptedConsent("Jane Doe"), at))
	require.Equal(t, AttemptConsentAccepted, attempt.State)
	assert.Equal(t, at, attempt.Consent.AcceptedAt)

	require.NoError(t, attempt.BeginSubmit())
	require.Equal(t, AttemptSubmitting, attempt.State)

	result := InferenceResult{
		ScanID:               "scan-42",
		PredictedClass:       ClassBenign,
		Confidence:           93.2,
		RiskLevel:            RiskLow,
		BenignProbability:    93.2,
		MalignantProbability: 6.8,
	}
	require.NoError(t, attempt.Complete(result))
	assert.Equal(t, AttemptSucceeded, attempt.State)
	assert.Equal(t, &result, attempt.Result)
}

func TestAttemptConsentCannotBeBypassed(t *testing.T) {
	t.Parallel()

	attempt := newTestAttempt(t)
	require.NoError(t, attempt.StageImage("scan.png", []byte("png")))

	err := attempt.BeginSubmit()
	require.ErrorIs(t, err, ErrConsentNotGiven)
	assert.Equal(t, AttemptImageStaged, attempt.State)
}

func TestAttemptRejectsUnsatisfiedConsent(t *testing.T) {
	t.Parallel()

	attempt := newTestAttempt(t)
	require.NoError(t, attempt.StageImage("scan.png", []byte("png")))
	require.NoError(t, attempt.RequestConsent())

	record := ConsentRecord{SubjectName: "Jane Doe", Affirmed: true, ChallengeText: "i understand."}
	err := attempt.AcceptConsent(record, time.Now())
	require.ErrorIs(t, err, ErrConsentNotGiven)
	assert.Equal(t, AttemptAwaitingConsent, attempt.State, "unsatisfied gate must not advance")
}

func TestAttemptDeclineConsentDiscardsStagedImage(t *testing.T) {
	t.Parallel()

	attempt := newTestAttempt(t)
	require.NoError(t, attempt.StageImage("scan.jpg", []byte("jpeg")))
	require.NoError(t, attempt.RequestConsent())
	require.NoError(t, attempt.DeclineConsent())

	assert.Equal(t, AttemptPatientSelected, attempt.State)
	assert.Empty(t, attempt.ImageName)
	assert.Nil(t, attempt.ImageData)
	assert.Nil(t, attempt.Consent)
}

func TestAttemptRestagingResetsConsent(t *testing.T) {
	t.Parallel()

	attempt := newTestAttempt(t)
	require.NoError(t, attempt.StageImage("first.jpg", []byte("a")))
	require.NoError(t, attempt.RequestConsent())
	require.NoError(t, attempt.DeclineConsent())

	// A different image is a different consent subject.
	require.NoError(t, attempt.StageImage("second.jpg", []byte("b")))
	require.Nil(t, attempt.Consent)
	require.NoError(t, attempt.RequestConsent())
	assert.False(t, attempt.Consent.Satisfied())
}

func TestAttemptDoubleSubmitRefused(t *testing.T) {
	t.Parallel()

	attempt := newTestAttempt(t)
	require.NoError(t, attempt.StageImage("scan.jpg", []byte("jpeg")))
	require.NoError(t, attempt.RequestConsent())
	require.NoError(t, attempt.AcceptConsent(acceptedConsent("Jane Doe"), time.Now()))
	require.NoError(t, attempt.BeginSubmit())

	err := attempt.BeginSubmit()
	require.ErrorIs(t, err, ErrSubmissionInFlight)
}

func TestAttemptRetryKeepsImageAndConsent(t *testing.T) {
	t.Parallel()

	attempt := newTestAttempt(t)
	require.NoError(t, attempt.StageImage("scan.jpg", []byte("jpeg")))
	require.NoError(t, attempt.RequestConsent())
	require.NoError(t, attempt.AcceptConsent(acceptedConsent("Jane Doe"), time.Now()))
	require.NoError(t, attempt.BeginSubmit())
	require.NoError(t, attempt.Fail("network unreachable"))
	require.Equal(t, AttemptFailed, attempt.State)
	assert.Equal(t, "network unreachable", attempt.FailedFor)

	require.NoError(t, attempt.Retry())
	assert.Equal(t, AttemptImageStaged, attempt.State)
	assert.Equal(t, "scan.jpg", attempt.ImageName)
	require.NotNil(t, attempt.Consent)
	assert.True(t, attempt.Consent.Satisfied())

	// Same subject/image pair: resubmission reuses the acknowledgment.
	require.NoError(t, attempt.BeginSubmit())
	assert.Empty(t, attempt.FailedFor)
}

func TestAttemptInvalidTransitionsReported(t *testing.T) {
	t.Parallel()

	attempt := newTestAttempt(t)

	err := attempt.RequestConsent()
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, AttemptPatientSelected, transitionErr.From)

	err = attempt.Complete(InferenceResult{})
	require.ErrorAs(t, err, &transitionErr)
}

func TestRiskLevelForMalignancy(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		malignant float64
		want      RiskLevel
	}{
		{0, RiskLow},
		{29.9, RiskLow},
		{30, RiskModerate},
		{49.9, RiskModerate},
		{50, RiskHigh},
		{69.9, RiskHigh},
		{70, RiskVeryHigh},
		{100, RiskVeryHigh},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, RiskLevelForMalignancy(tc.malignant), "malignant %.1f", tc.malignant)
	}
}

func TestInferenceResultSummaryOneDecimal(t *testing.T) {
	t.Parallel()

	result := InferenceResult{PredictedClass: ClassBenign, Confidence: 93.2}
	assert.Equal(t, "Benign, 93.2% confidence", result.Summary())

	result = InferenceResult{PredictedClass: ClassMalignant, Confidence: 87.25}
	assert.Equal(t, "Malignant, 87.2% confidence", result.Summary())
}

func TestInferenceResultIntegritySuspect(t *testing.T) {
	t.Parallel()

	clean := InferenceResult{BenignProbability: 93.2, MalignantProbability: 6.8}
	assert.False(t, clean.IntegritySuspect())

	rounded := InferenceResult{BenignProbability: 93.2, MalignantProbability: 6.5}
	assert.False(t, rounded.IntegritySuspect(), "within rounding tolerance")

	broken := InferenceResult{BenignProbability: 93.2, MalignantProbability: 16.8}
	assert.True(t, broken.IntegritySuspect())

	missing := InferenceResult{BenignProbability: 93.2}
	assert.True(t, missing.IntegritySuspect(), "missing malignant probability must be flagged")
}
