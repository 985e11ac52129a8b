package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/techwiz-hq/api-smoke-harness/internal/api"
	"github.com/techwiz-hq/api-smoke-harness/internal/fixtures"
	"github.com/techwiz-hq/api-smoke-harness/internal/logger"
	"github.com/techwiz-hq/api-smoke-harness/internal/prompt"
	"github.com/techwiz-hq/api-smoke-harness/internal/session"
)

// OTPPrompt is shown to the operator while the flow waits for the emailed code.
const OTPPrompt = "Enter OTP from email:"

var (
	// ErrNoOTP means the operator supplied no OTP.
	ErrNoOTP = errors.New("no OTP provided")
	// ErrUnexpected wraps a panic recovered from a step.
	ErrUnexpected = errors.New("unexpected failure")
)

// Outcome summarises one profile-flow run.
type Outcome struct {
	RunID string
	// Final is StateDone or StateAborted.
	Final State
	// AbortedAt is the state the flow was in when it aborted; StateIdle when it completed.
	AbortedAt State
	Trail     []State
	Err       error
}

// FlowOptions configures a ProfileFlow.
type FlowOptions struct {
	Client   *api.Client
	Input    prompt.InputProvider
	Fixtures fixtures.Set
	Role     string
	RunID    string
	Log      logger.Logger
}

// ProfileFlow drives register, OTP verification, profile read and profile update in order.
type ProfileFlow struct {
	client   *api.Client
	input    prompt.InputProvider
	fixtures fixtures.Set
	role     string
	runID    string
	log      logger.Logger

	state State
	trail []State
}

// NewProfileFlow builds a flow in StateIdle.
func NewProfileFlow(opts FlowOptions) (*ProfileFlow, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("api client must not be nil")
	}
	if opts.Input == nil {
		return nil, fmt.Errorf("input provider must not be nil")
	}
	role := opts.Role
	if role == "" {
		role = "shelter"
	}
	return &ProfileFlow{
		client:   opts.Client,
		input:    opts.Input,
		fixtures: opts.Fixtures,
		role:     role,
		runID:    opts.RunID,
		log:      logger.Ensure(opts.Log),
		state:    StateIdle,
		trail:    []State{StateIdle},
	}, nil
}

// State returns the current state.
func (f *ProfileFlow) State() State { return f.state }

// Run executes the flow once. Every failure ends in StateAborted and is
// reported through the Outcome, never returned or re-panicked.
func (f *ProfileFlow) Run(ctx context.Context) (out Outcome) {
	if f.state != StateIdle {
		return Outcome{RunID: f.runID, Final: f.state, Trail: f.trailCopy(), Err: fmt.Errorf("flow already ran (state %s)", f.state)}
	}

	defer func() {
		if r := recover(); r != nil {
			out = f.abort(fmt.Errorf("%w: %v", ErrUnexpected, r))
		}
	}()

	f.log.InfoObj("=== Starting API Tests ===", "flow", map[string]any{"run_id": f.runID, "role": f.role})

	if err := f.steps(ctx); err != nil {
		return f.abort(err)
	}

	f.transition(StateDone)
	f.log.InfoObj("=== Tests completed ===", "flow", map[string]any{"run_id": f.runID, "trail": f.trailNames()})
	return Outcome{RunID: f.runID, Final: StateDone, AbortedAt: StateIdle, Trail: f.trailCopy()}
}

func (f *ProfileFlow) steps(ctx context.Context) error {
	email := f.fixtures.Register.Email

	f.transition(StateRegistering)
	f.log.InfoObj("1. Testing registration...", "register_request", map[string]any{
		"email":       email,
		"fullName":    f.fixtures.Register.FullName,
		"phoneNumber": f.fixtures.Register.PhoneNumber,
		"role":        f.fixtures.Register.Role,
	})
	env, err := f.client.Register(ctx, f.fixtures.Register)
	f.logEnvelope("Register response", env, err)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	f.transition(StateAwaitingOTP)
	f.log.InfoObj("2. Please check email for OTP and enter it manually", "email", email)
	otp, err := f.input.ReadLine(ctx, OTPPrompt)
	if err != nil {
		return fmt.Errorf("read otp: %w", err)
	}
	if otp == "" {
		return ErrNoOTP
	}

	f.transition(StateVerifying)
	f.log.InfoObj("3. Verifying OTP...", "email", email)
	token, env, err := f.client.VerifyOTP(ctx, email, otp)
	f.logEnvelope("Verify OTP response", env, err)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	f.logToken(token)

	f.transition(StateFetchingProfile)
	f.log.InfoObj("4. Testing GET profile...", "role", f.role)
	env, err = f.client.GetProfile(ctx, token, f.role)
	f.logEnvelope(fmt.Sprintf("Get %s profile response", f.role), env, err)
	if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}

	f.transition(StateUpdatingProfile)
	f.log.InfoObj("5. Testing UPDATE profile...", "shelter_profile", f.fixtures.Shelter)
	env, err = f.client.UpdateShelterProfile(ctx, token, f.fixtures.Shelter)
	f.logEnvelope("Update shelter profile response", env, err)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (f *ProfileFlow) transition(to State) {
	if !canTransition(f.state, to) {
		panic(fmt.Sprintf("illegal flow transition %s -> %s", f.state, to))
	}
	f.log.DebugObj("flow transition", "transition", map[string]any{
		"run_id": f.runID,
		"from":   f.state.String(),
		"to":     to.String(),
	})
	f.state = to
	f.trail = append(f.trail, to)
}

func (f *ProfileFlow) abort(err error) Outcome {
	at := f.state
	if !at.Terminal() {
		f.transition(StateAborted)
	}

	meta := map[string]any{
		"run_id":     f.runID,
		"aborted_at": at.String(),
		"error":      err.Error(),
	}
	switch {
	case errors.Is(err, ErrNoOTP):
		f.log.WarnObj("No OTP provided, stopping tests", "flow_abort", meta)
	case errors.Is(err, context.Canceled):
		f.log.WarnObj("Interrupted, stopping tests", "flow_abort", meta)
	default:
		f.log.ErrorObj("Test error", "flow_abort", meta)
	}
	return Outcome{RunID: f.runID, Final: StateAborted, AbortedAt: at, Trail: f.trailCopy(), Err: err}
}

func (f *ProfileFlow) logEnvelope(msg string, env api.Envelope, err error) {
	if err != nil && env.Success == nil && env.Message == "" && len(env.Data) == 0 {
		return
	}
	fields := map[string]any{
		"run_id":  f.runID,
		"message": env.Message,
		"data":    string(env.Data),
	}
	if env.Success != nil {
		fields["success"] = *env.Success
	}
	if env.Failed() {
		f.log.WarnObj(msg, "response", fields)
		return
	}
	f.log.InfoObj(msg, "response", fields)
}

func (f *ProfileFlow) logToken(token session.Token) {
	meta := map[string]any{"run_id": f.runID, "token": token.Redacted()}
	claims, err := token.Inspect()
	if err != nil {
		f.log.DebugObj("token claims unavailable", "token_error", err.Error())
	} else {
		meta["claims"] = claims
	}
	f.log.InfoObj("JWT Token", "token", meta)
}

func (f *ProfileFlow) trailCopy() []State {
	return append([]State(nil), f.trail...)
}

func (f *ProfileFlow) trailNames() []string {
	names := make([]string, len(f.trail))
	for i, s := range f.trail {
		names[i] = s.String()
	}
	return names
}
