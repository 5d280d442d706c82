package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/teemow/teamsbrief/internal/instrumentation"
	"github.com/teemow/teamsbrief/internal/logging"
)

// Graph API base URLs. The beta base is the fallback for transcript
// endpoints that have not reached v1.0 in all tenants.
const (
	DefaultBaseV1   = "https://graph.microsoft.com/v1.0"
	DefaultBaseBeta = "https://graph.microsoft.com/beta"
)

// requestTimeout bounds every Graph call.
const requestTimeout = 30 * time.Second

// Client talks to Microsoft Graph on behalf of the signed-in user.
type Client struct {
	hc       *http.Client
	baseV1   string
	baseBeta string
	sink     DiagnosticSink
	metrics  *instrumentation.Metrics
	logger   *slog.Logger
}

// NewClient creates a Graph client over an authenticated HTTP client
// (one whose transport injects the bearer token, see msauth.Client).
func NewClient(hc *http.Client) *Client {
	if hc.Timeout == 0 {
		hc.Timeout = requestTimeout
	}
	return &Client{
		hc:       hc,
		baseV1:   DefaultBaseV1,
		baseBeta: DefaultBaseBeta,
		sink:     Discard,
		logger:   logging.WithService(slog.Default(), "graph"),
	}
}

// WithDiagnostics sets the sink that receives raw response bodies.
func (c *Client) WithDiagnostics(sink DiagnosticSink) *Client {
	if sink != nil {
		c.sink = sink
	}
	return c
}

// WithBases overrides the API base URLs. Used by tests.
func (c *Client) WithBases(v1, beta string) *Client {
	c.baseV1 = v1
	c.baseBeta = beta
	return c
}

// WithMetrics attaches an operation metrics recorder.
func (c *Client) WithMetrics(m *instrumentation.Metrics) *Client {
	c.metrics = m
	return c
}

// get issues a GET with the given Accept header and returns the status code
// and the fully-read body.
func (c *Client) get(ctx context.Context, url, accept string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// recordOperation reports an operation outcome to the metrics recorder.
func (c *Client) recordOperation(ctx context.Context, op string, start time.Time, err error) {
	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
	}
	c.metrics.RecordGraphOperation(ctx, op, status, time.Since(start))
}

// Me returns the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	status, body, err := c.get(ctx, c.baseV1+"/me", "application/json")
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch profile: status %d: %s", status, snippet(body))
	}

	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &p, nil
}

// sendMailRequest is the Graph sendMail envelope.
type sendMailRequest struct {
	Message         sendMailMessage `json:"message"`
	SaveToSentItems bool            `json:"saveToSentItems"`
}

type sendMailMessage struct {
	Subject      string          `json:"subject"`
	Body         sendMailBody    `json:"body"`
	ToRecipients []mailRecipient `json:"toRecipients"`
}

type sendMailBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type mailRecipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type emailAddress struct {
	Address string `json:"address"`
}

// SendMail submits an HTML message via the sendMail endpoint. Graph signals
// acceptance with 202, some tenants answer 200.
func (c *Client) SendMail(ctx context.Context, m Mail) (err error) {
	start := time.Now()
	defer func() {
		c.recordOperation(ctx, "send_mail", start, err)
		result := logging.StatusSuccess
		if err != nil {
			result = logging.StatusError
		}
		c.metrics.RecordMailSent(ctx, result)
	}()

	payload := sendMailRequest{
		Message: sendMailMessage{
			Subject: m.Subject,
			Body: sendMailBody{
				ContentType: "HTML",
				Content:     m.HTMLBody,
			},
		},
		SaveToSentItems: true,
	}
	for _, addr := range m.To {
		if addr == "" {
			continue
		}
		payload.Message.ToRecipients = append(payload.Message.ToRecipients, mailRecipient{
			EmailAddress: emailAddress{Address: addr},
		})
	}
	if len(payload.Message.ToRecipients) == 0 {
		return fmt.Errorf("sendMail: no recipients")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode sendMail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseV1+"/me/sendMail", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build sendMail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("sendMail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sendMail failed: status %d: %s", resp.StatusCode, snippet(body))
	}

	c.logger.Info("email submitted to Graph",
		logging.Operation("send_mail"),
		slog.Int("recipients", len(payload.Message.ToRecipients)))
	return nil
}

// snippet trims a response body for inclusion in error messages.
func snippet(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
