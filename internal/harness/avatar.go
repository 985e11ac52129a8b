package harness

import (
	"context"

	"github.com/techwiz-hq/api-smoke-harness/internal/api"
	"github.com/techwiz-hq/api-smoke-harness/internal/logger"
)

// AvatarCheck issues a single authenticated avatar update and prints the raw response.
type AvatarCheck struct {
	client   *api.Client
	token    string
	imageURL string
	log      logger.Logger
}

// NewAvatarCheck builds the single-call harness.
func NewAvatarCheck(client *api.Client, token, imageURL string, log logger.Logger) *AvatarCheck {
	return &AvatarCheck{
		client:   client,
		token:    token,
		imageURL: imageURL,
		log:      logger.Ensure(log),
	}
}

// Run sends the request once. A transport failure is logged and returned;
// any HTTP status counts as a completed call.
func (a *AvatarCheck) Run(ctx context.Context) error {
	a.log.InfoObj("testing API "+api.PathAvatar, "request_data", api.AvatarUpdate{ProfileImageURL: a.imageURL})

	resp, err := a.client.UpdateAvatar(ctx, a.token, a.imageURL)
	if err != nil {
		a.log.ErrorObj("problem with request", "error", err.Error())
		return err
	}

	a.log.InfoObj("STATUS", "status_code", resp.StatusCode())
	a.log.InfoObj("HEADERS", "headers", resp.Header())
	a.log.InfoObj("RESPONSE BODY", "body", string(resp.Body()))
	return nil
}
