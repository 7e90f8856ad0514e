// Package apiclient builds the HTTP client shared by the Transifex and
// ParaTranz integrations.
//
// Requests are never retried automatically: each workflow decides what a
// failed request means for the item it is processing.
package apiclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 60 * time.Second
	MaxRedirects   = 10
	// maxBodyInError caps the response body quoted in a StatusError.
	maxBodyInError = 512
)

// Options configures New.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Logger receives one debug line per response. Nil disables logging.
	Logger *zap.SugaredLogger
}

// New returns a resty client configured from opts.
func New(opts Options) *resty.Client {
	logger := NewLogger(opts.Logger)
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := resty.New()
	c.SetLogger(logger)
	c.SetTimeout(timeout)
	c.SetRetryCount(0)
	c.SetRedirectPolicy(resty.FlexibleRedirectPolicy(MaxRedirects))
	if opts.BaseURL != "" {
		c.SetBaseURL(opts.BaseURL)
	}
	if opts.UserAgent != "" {
		c.SetHeader("User-Agent", opts.UserAgent)
	}

	c.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		logger.Debugf("%s", responseToLog(res))
		return nil
	})
	c.OnError(func(req *resty.Request, err error) {
		logger.Errorf("%s %s | %v", req.Method, req.URL, err)
	})

	return c
}

func responseToLog(res *resty.Response) string {
	req := res.Request
	return fmt.Sprintf("%s %s | %d | %s", req.Method, req.URL, res.StatusCode(), res.Time())
}

// ---------------------------------------------------------------------------
// Status errors
// ---------------------------------------------------------------------------

// StatusError is a response whose status code the caller did not accept.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > maxBodyInError {
		body = body[:maxBodyInError] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s: status %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, body)
}

// Expect returns a *StatusError unless res has one of the accepted codes.
// With no codes given, only 200 is accepted.
func Expect(op string, res *resty.Response, accepted ...int) error {
	if len(accepted) == 0 {
		accepted = []int{http.StatusOK}
	}
	for _, code := range accepted {
		if res.StatusCode() == code {
			return nil
		}
	}
	return &StatusError{Op: op, StatusCode: res.StatusCode(), Body: res.String()}
}
