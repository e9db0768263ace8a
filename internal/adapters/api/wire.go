package api

import (
	"strings"

	"github.com/curascan/cli/internal/domain"
)

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
}

type loginRequestPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponsePayload struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        userPayload `json:"user"`
}

type patientPayload struct {
	ID                  string `json:"id"`
	FullName            string `json:"full_name"`
	MedicalRecordNumber string `json:"medical_record_number"`
	DateOfBirth         string `json:"date_of_birth"`
}

type analyzeResponsePayload struct {
	ScanID               string   `json:"scan_id"`
	PredictedClass       string   `json:"predicted_class"`
	Confidence           float64  `json:"confidence"`
	RiskLevel            string   `json:"risk_level"`
	BenignProbability    float64  `json:"benign_probability"`
	MalignantProbability *float64 `json:"malignant_probability"`
}

func fromUserPayload(u userPayload) domain.Actor {
	return domain.Actor{
		ID:       domain.ActorID(u.ID),
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     domain.Role(strings.ToLower(strings.TrimSpace(u.Role))),
		TenantID: u.TenantID,
	}
}

func fromPatientPayload(p patientPayload) domain.Patient {
	return domain.Patient{
		ID:                  domain.PatientID(p.ID),
		FullName:            p.FullName,
		MedicalRecordNumber: p.MedicalRecordNumber,
		DateOfBirth:         p.DateOfBirth,
	}
}

func fromAnalyzePayload(p analyzeResponsePayload) domain.InferenceResult {
	// A missing malignant probability stays zero so the integrity check
	// flags the result instead of the client papering over it.
	var malignant float64
	if p.MalignantProbability != nil {
		malignant = *p.MalignantProbability
	}

	risk := parseRiskLevel(p.RiskLevel)
	if risk == "" {
		inferred := malignant
		if p.MalignantProbability == nil {
			inferred = 100 - p.BenignProbability
		}
		risk = domain.RiskLevelForMalignancy(inferred)
	}

	return domain.InferenceResult{
		ScanID:               p.ScanID,
		PredictedClass:       domain.Classification(strings.ToLower(strings.TrimSpace(p.PredictedClass))),
		Confidence:           p.Confidence,
		RiskLevel:            risk,
		BenignProbability:    p.BenignProbability,
		MalignantProbability: malignant,
	}
}

// parseRiskLevel tolerates the scoring service's display labels
// ("High Risk") as well as the bare enum values.
func parseRiskLevel(raw string) domain.RiskLevel {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.TrimSuffix(cleaned, " risk")
	cleaned = strings.ReplaceAll(cleaned, " ", "_")

	switch domain.RiskLevel(cleaned) {
	case domain.RiskLow, domain.RiskModerate, domain.RiskHigh, domain.RiskVeryHigh:
		return domain.RiskLevel(cleaned)
	}
	return ""
}
