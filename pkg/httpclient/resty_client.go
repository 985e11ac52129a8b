package httpclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a RestyClient rooted at baseURL with the specified timeout.
// Retries stay at resty's default of zero.
func NewRestyClient(baseURL string, timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(baseURL, timeout)}
}

// newRestyBaseClient creates a new resty.Client with the specified base URL and timeout.
func newRestyBaseClient(baseURL string, timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetBaseURL(strings.TrimRight(baseURL, "/"))
	c.SetTimeout(timeout)
	return c
}

// Do executes req and returns the fully read response.
func (r *RestyClient) Do(ctx context.Context, req Request) (Response, error) {
	rr := r.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		rr.SetHeaders(req.Headers)
	}
	if req.BearerToken != "" {
		rr.SetAuthToken(req.BearerToken)
	}
	if req.Body != nil {
		rr.SetBody(req.Body).SetContentLength(true)
	}

	resp, err := rr.Execute(req.Method, req.Path)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Status() string      { return r.resp.Status() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
