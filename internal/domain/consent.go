package domain

import (
	"strings"
	"time"
)

// ConsentChallenge is the exact text a clinician must type before an
// image is sent for AI analysis. Matching is trimmed and case-insensitive;
// anything else fails closed.
const ConsentChallenge = "i understand"

// ConsentRecord captures one explicit acknowledgment for one subject.
// A record is single-use: it belongs to the attempt that created it and
// never carries over to a different image or patient.
type ConsentRecord struct {
	SubjectName   string
	Affirmed      bool
	ChallengeText string
	AcceptedAt    time.Time
}

func NewConsentRecord(subjectName string) ConsentRecord {
	return ConsentRecord{SubjectName: subjectName}
}

// Satisfied reports whether both halves of the gate are met: the
// checkbox and the typed challenge.
func (c ConsentRecord) Satisfied() bool {
	return c.Affirmed && normalizeChallenge(c.ChallengeText) == ConsentChallenge
}

func normalizeChallenge(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
