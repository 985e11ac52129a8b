package harness

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/techwiz-hq/api-smoke-harness/internal/api"
	"github.com/techwiz-hq/api-smoke-harness/internal/fixtures"
	"github.com/techwiz-hq/api-smoke-harness/internal/prompt"
)

const (
	keyRegister = "POST /api/auth/register"
	keyVerify   = "POST /api/auth/verify-otp"
	keyGet      = "GET /api/profile/shelter"
	keyUpdate   = "PUT /api/profile/shelter"
)

func happyBodies() map[string]string {
	return map[string]string{
		keyRegister: `{"success":true}`,
		keyVerify:   `{"data":{"token":"T"}}`,
		keyGet:      `{"success":true,"data":{"shelterName":"Old"}}`,
		keyUpdate:   `{"success":true,"message":"Profile updated successfully"}`,
	}
}

func runFlow(t *testing.T, m *mockAPI, input prompt.InputProvider) Outcome {
	t.Helper()
	flow, err := NewProfileFlow(FlowOptions{
		Client:   m.client(),
		Input:    input,
		Fixtures: fixtures.Defaults(),
		RunID:    "run-1",
	})
	if err != nil {
		t.Fatalf("NewProfileFlow: %v", err)
	}
	return flow.Run(context.Background())
}

func callKeys(calls []recordedCall) []string {
	keys := make([]string, len(calls))
	for i, c := range calls {
		keys[i] = c.Method + " " + c.Path
	}
	return keys
}

func assertCalls(t *testing.T, m *mockAPI, want ...string) []recordedCall {
	t.Helper()
	calls := m.Calls()
	got := callKeys(calls)
	if len(got) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: got %q want %q", i, got[i], want[i])
		}
	}
	return calls
}

func TestProfileFlowHappyPath(t *testing.T) {
	m := newMockAPI(t, happyBodies())
	input := prompt.NewScripted("000000")

	out := runFlow(t, m, input)
	if out.Err != nil || out.Final != StateDone {
		t.Fatalf("expected done, got %s err=%v", out.Final, out.Err)
	}

	calls := assertCalls(t, m, keyRegister, keyVerify, keyGet, keyUpdate)

	var reg api.RegisterRequest
	decodeBody(t, calls[0].Body, &reg)
	if reg != fixtures.Defaults().Register {
		t.Fatalf("unexpected register body %#v", reg)
	}
	if calls[0].Authorization != "" {
		t.Fatalf("register must not carry a bearer token")
	}

	var verify api.VerifyOTPRequest
	decodeBody(t, calls[1].Body, &verify)
	if verify.OTP != "000000" || verify.Purpose != "REGISTRATION" || verify.Email != reg.Email {
		t.Fatalf("unexpected verify body %#v", verify)
	}

	for _, c := range calls[2:] {
		if c.Authorization != "Bearer T" {
			t.Fatalf("%s %s: expected Bearer T, got %q", c.Method, c.Path, c.Authorization)
		}
	}

	var profile api.ShelterProfile
	decodeBody(t, calls[3].Body, &profile)
	if profile != fixtures.Defaults().Shelter {
		t.Fatalf("unexpected profile body %#v", profile)
	}

	wantTrail := []State{StateIdle, StateRegistering, StateAwaitingOTP, StateVerifying, StateFetchingProfile, StateUpdatingProfile, StateDone}
	if len(out.Trail) != len(wantTrail) {
		t.Fatalf("unexpected trail %v", out.Trail)
	}
	for i := range wantTrail {
		if out.Trail[i] != wantTrail[i] {
			t.Fatalf("trail[%d] = %s, want %s", i, out.Trail[i], wantTrail[i])
		}
	}
	if got := input.Prompts(); len(got) != 1 || got[0] != OTPPrompt {
		t.Fatalf("unexpected prompts %v", got)
	}
}

func TestProfileFlowAbortsWhenRegistrationFails(t *testing.T) {
	bodies := happyBodies()
	bodies[keyRegister] = `{"success":false,"message":"Email already exists!"}`
	m := newMockAPI(t, bodies)
	input := prompt.NewScripted("000000")

	out := runFlow(t, m, input)
	if out.Final != StateAborted || out.AbortedAt != StateRegistering {
		t.Fatalf("expected abort at registering, got %s/%s", out.Final, out.AbortedAt)
	}
	if !errors.Is(out.Err, api.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", out.Err)
	}
	assertCalls(t, m, keyRegister)
	if len(input.Prompts()) != 0 {
		t.Fatalf("operator must not be prompted after a failed registration")
	}
}

func TestProfileFlowAbortsWithoutToken(t *testing.T) {
	bodies := happyBodies()
	bodies[keyVerify] = `{"success":true,"message":"Email verified successfully!"}`
	m := newMockAPI(t, bodies)

	out := runFlow(t, m, prompt.NewScripted("000000"))
	if out.Final != StateAborted || out.AbortedAt != StateVerifying {
		t.Fatalf("expected abort at verifying, got %s/%s", out.Final, out.AbortedAt)
	}
	if !errors.Is(out.Err, api.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", out.Err)
	}
	assertCalls(t, m, keyRegister, keyVerify)
}

func TestProfileFlowAbortsOnEmptyOTP(t *testing.T) {
	m := newMockAPI(t, happyBodies())

	out := runFlow(t, m, prompt.NewScripted(""))
	if out.Final != StateAborted || out.AbortedAt != StateAwaitingOTP {
		t.Fatalf("expected abort at awaiting_otp, got %s/%s", out.Final, out.AbortedAt)
	}
	if !errors.Is(out.Err, ErrNoOTP) {
		t.Fatalf("expected ErrNoOTP, got %v", out.Err)
	}
	assertCalls(t, m, keyRegister)
}

func TestProfileFlowAbortsOnMalformedJSON(t *testing.T) {
	bodies := happyBodies()
	bodies[keyGet] = `<html>oops`
	m := newMockAPI(t, bodies)

	out := runFlow(t, m, prompt.Static("000000"))
	if out.Final != StateAborted || out.AbortedAt != StateFetchingProfile {
		t.Fatalf("expected abort at fetching_profile, got %s/%s", out.Final, out.AbortedAt)
	}
	if !errors.Is(out.Err, api.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", out.Err)
	}
	assertCalls(t, m, keyRegister, keyVerify, keyGet)
}

func TestProfileFlowProfileFailureIsLoggedNotFatal(t *testing.T) {
	bodies := happyBodies()
	bodies[keyGet] = `{"success":false,"message":"Failed to get shelter profile"}`
	m := newMockAPI(t, bodies)

	out := runFlow(t, m, prompt.Static("000000"))
	if out.Final != StateDone {
		t.Fatalf("expected done, got %s err=%v", out.Final, out.Err)
	}
	assertCalls(t, m, keyRegister, keyVerify, keyGet, keyUpdate)
}

func TestProfileFlowRecoversFromPanickingInput(t *testing.T) {
	m := newMockAPI(t, happyBodies())

	out := runFlow(t, m, panicInput{})
	if out.Final != StateAborted || !errors.Is(out.Err, ErrUnexpected) {
		t.Fatalf("expected unexpected-failure abort, got %s err=%v", out.Final, out.Err)
	}
	if out.AbortedAt != StateAwaitingOTP {
		t.Fatalf("expected abort at awaiting_otp, got %s", out.AbortedAt)
	}
}

func TestProfileFlowRunsOnce(t *testing.T) {
	m := newMockAPI(t, happyBodies())
	flow, err := NewProfileFlow(FlowOptions{Client: m.client(), Input: prompt.Static("1"), Fixtures: fixtures.Defaults()})
	if err != nil {
		t.Fatalf("NewProfileFlow: %v", err)
	}
	if out := flow.Run(context.Background()); out.Final != StateDone {
		t.Fatalf("first run: %s %v", out.Final, out.Err)
	}
	if out := flow.Run(context.Background()); out.Err == nil {
		t.Fatalf("expected error on second run")
	}
	if len(m.Calls()) != 4 {
		t.Fatalf("second run must not issue requests, got %d calls", len(m.Calls()))
	}
}

func TestNewProfileFlowRequiresDependencies(t *testing.T) {
	if _, err := NewProfileFlow(FlowOptions{Input: prompt.Static("1")}); err == nil {
		t.Fatalf("expected error without client")
	}
	m := newMockAPI(t, nil)
	if _, err := NewProfileFlow(FlowOptions{Client: m.client()}); err == nil {
		t.Fatalf("expected error without input provider")
	}
}

type panicInput struct{}

func (panicInput) ReadLine(context.Context, string) (string, error) {
	panic("stdin exploded")
}

func TestProfileFlowAbortsWhenInterruptedAtPrompt(t *testing.T) {
	m := newMockAPI(t, happyBodies())
	pr, pw := io.Pipe()
	defer pw.Close()
	prompted := newSignalWriter()

	flow, err := NewProfileFlow(FlowOptions{
		Client:   m.client(),
		Input:    prompt.NewConsole(pr, prompted),
		Fixtures: fixtures.Defaults(),
		RunID:    "run-1",
	})
	if err != nil {
		t.Fatalf("NewProfileFlow: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan Outcome, 1)
	go func() { done <- flow.Run(ctx) }()

	select {
	case <-prompted.written:
	case <-time.After(2 * time.Second):
		t.Fatalf("OTP prompt was never shown")
	}
	cancel()

	var out Outcome
	select {
	case out = <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("flow still blocked on the OTP prompt after cancel")
	}
	if out.Final != StateAborted || out.AbortedAt != StateAwaitingOTP {
		t.Fatalf("expected abort at awaiting_otp, got %s/%s", out.Final, out.AbortedAt)
	}
	if !errors.Is(out.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", out.Err)
	}
	assertCalls(t, m, keyRegister)
}

// signalWriter closes written on the first Write.
type signalWriter struct {
	once    sync.Once
	written chan struct{}
}

func newSignalWriter() *signalWriter {
	return &signalWriter{written: make(chan struct{})}
}

func (w *signalWriter) Write(p []byte) (int, error) {
	w.once.Do(func() { close(w.written) })
	return len(p), nil
}
