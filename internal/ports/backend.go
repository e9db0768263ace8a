package ports

import (
	"context"

	"github.com/curascan/cli/internal/domain"
)

// AuthAPI is the authentication surface of the backend. Me and Logout
// take the token explicitly because they run at session edges where the
// ambient token has been, or is about to be, cleared.
type AuthAPI interface {
	Login(ctx context.Context, identifier, secret string) (domain.Session, error)
	Me(ctx context.Context, token string) (domain.Actor, error)
	Logout(ctx context.Context, token string) error
}

type PatientDirectory interface {
	SearchPatients(ctx context.Context, query string) ([]domain.Patient, error)
}

// AnalyzeRequest carries everything one inference submission needs. The
// consent flag is asserted by the caller only after the gate is
// satisfied.
type AnalyzeRequest struct {
	PatientID       domain.PatientID
	ImageName       string
	ImageData       []byte
	ConsentAccepted bool
	Notes           string
}

type ScreeningAPI interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (domain.InferenceResult, error)
}
