package app

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/techwiz-hq/api-smoke-harness/internal/api"
	"github.com/techwiz-hq/api-smoke-harness/internal/config"
	"github.com/techwiz-hq/api-smoke-harness/internal/fixtures"
	"github.com/techwiz-hq/api-smoke-harness/internal/harness"
	"github.com/techwiz-hq/api-smoke-harness/internal/logger"
	"github.com/techwiz-hq/api-smoke-harness/internal/prompt"
	"github.com/techwiz-hq/api-smoke-harness/pkg/httpclient"
)

// AvatarApp wires the single-call harness from config.
type AvatarApp struct {
	check *harness.AvatarCheck
}

// NewAvatarApp builds the avatar harness runtime.
func NewAvatarApp(cfg *config.Config, log *logger.Zap) (*AvatarApp, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.FromZap(nil)
	}
	log = log.With("run_id", uuid.NewString())

	client := api.NewClient(httpclient.NewRestyClient(cfg.BaseURL, cfg.Timeout), log)
	if cfg.Token == config.PlaceholderToken {
		log.WarnObj("using placeholder bearer token; set HARNESS_TOKEN or --token", "token", cfg.Token)
	}

	return &AvatarApp{
		check: harness.NewAvatarCheck(client, cfg.Token, cfg.ProfileImageURL, log),
	}, nil
}

// Run performs the call. Its outcome is logged only and never returned.
func (a *AvatarApp) Run(ctx context.Context) error {
	if a == nil || a.check == nil {
		return fmt.Errorf("avatar app is not initialized")
	}
	_ = a.check.Run(ctx)
	return nil
}

// FlowApp wires the profile-completion flow from config.
type FlowApp struct {
	flow *harness.ProfileFlow
}

// NewFlowApp builds the flow runtime. stdin and stdout back the OTP prompt
// unless cfg.OTP is set.
func NewFlowApp(cfg *config.Config, log *logger.Zap, stdin io.Reader, stdout io.Writer) (*FlowApp, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.FromZap(nil)
	}

	runID := uuid.NewString()
	log = log.With("run_id", runID)

	set, err := fixtures.Load(cfg.FixturesFile)
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}
	if cfg.UniqueEmail {
		set.Register.Email = fixtures.UniqueEmail(set.Register.Email, runID[:8])
	}

	var input prompt.InputProvider = prompt.NewConsole(stdin, stdout)
	if cfg.OTP != "" {
		input = prompt.Static(cfg.OTP)
	}

	log.InfoObj("profile flow configured", "flow_config", map[string]any{
		"base_url":      cfg.BaseURL,
		"role":          cfg.ProfileRole,
		"email":         set.Register.Email,
		"fixtures_file": cfg.FixturesFile,
		"otp_from":      otpSource(cfg),
	})

	flow, err := harness.NewProfileFlow(harness.FlowOptions{
		Client:   api.NewClient(httpclient.NewRestyClient(cfg.BaseURL, cfg.Timeout), log),
		Input:    input,
		Fixtures: set,
		Role:     cfg.ProfileRole,
		RunID:    runID,
		Log:      log,
	})
	if err != nil {
		return nil, err
	}
	return &FlowApp{flow: flow}, nil
}

// Run executes the flow and returns its outcome. Harness failures are part
// of the outcome, not the error.
func (a *FlowApp) Run(ctx context.Context) (harness.Outcome, error) {
	if a == nil || a.flow == nil {
		return harness.Outcome{}, fmt.Errorf("flow app is not initialized")
	}
	return a.flow.Run(ctx), nil
}

func otpSource(cfg *config.Config) string {
	if cfg.OTP != "" {
		return "config"
	}
	return "prompt"
}
