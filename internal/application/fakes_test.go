package application

import (
	"context"
	"sync"
	"time"

	"github.com/curascan/cli/internal/domain"
	"github.com/curascan/cli/internal/ports"
)

type memVault struct {
	mu       sync.Mutex
	token    string
	present  bool
	writeErr error
	delErr   error
}

func (v *memVault) Read(ctx context.Context) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.present {
		return "", domain.ErrTokenNotFound
	}
	return v.token, nil
}

func (v *memVault) Write(ctx context.Context, token string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.writeErr != nil {
		return v.writeErr
	}
	v.token = token
	v.present = true
	return nil
}

func (v *memVault) Delete(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.delErr != nil {
		return v.delErr
	}
	v.token = ""
	v.present = false
	return nil
}

type memProfiles struct {
	mu      sync.Mutex
	actor   domain.Actor
	present bool
	saveErr error
}

func (p *memProfiles) Load(ctx context.Context) (domain.Actor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.present {
		return domain.Actor{}, domain.ErrProfileNotCached
	}
	return p.actor, nil
}

func (p *memProfiles) Save(ctx context.Context, actor domain.Actor) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saveErr != nil {
		return p.saveErr
	}
	p.actor = actor
	p.present = true
	return nil
}

func (p *memProfiles) Clear(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actor = domain.Actor{}
	p.present = false
	return nil
}

type fakeAuth struct {
	mu sync.Mutex

	loginSession domain.Session
	loginErr     error

	meActor domain.Actor
	meErr   error

	logoutErr    error
	logoutTokens []string
}

func (a *fakeAuth) Login(ctx context.Context, identifier, secret string) (domain.Session, error) {
	if a.loginErr != nil {
		return domain.Session{}, a.loginErr
	}
	return a.loginSession, nil
}

func (a *fakeAuth) Me(ctx context.Context, token string) (domain.Actor, error) {
	if a.meErr != nil {
		return domain.Actor{}, a.meErr
	}
	return a.meActor, nil
}

func (a *fakeAuth) Logout(ctx context.Context, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logoutTokens = append(a.logoutTokens, token)
	return a.logoutErr
}

func (a *fakeAuth) logoutCalls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.logoutTokens...)
}

type fakeScreening struct {
	analyze func(ctx context.Context, req ports.AnalyzeRequest) (domain.InferenceResult, error)
}

func (s *fakeScreening) Analyze(ctx context.Context, req ports.AnalyzeRequest) (domain.InferenceResult, error) {
	return s.analyze(ctx, req)
}

type fakePatients struct {
	results []domain.Patient
	err     error
	queries []string
}

func (p *fakePatients) SearchPatients(ctx context.Context, query string) ([]domain.Patient, error) {
	p.queries = append(p.queries, query)
	if p.err != nil {
		return nil, p.err
	}
	return p.results, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func testActor() domain.Actor {
	return domain.Actor{
		ID:       "usr-1",
		Username: "dr.osei",
		Email:    "osei@clinic.example",
		FullName: "Dr. Ama Osei",
		Role:     domain.RoleDoctor,
		TenantID: "org-7",
	}
}

func testSession() domain.Session {
	return domain.Session{Actor: testActor(), AccessToken: "tok-abc"}
}
