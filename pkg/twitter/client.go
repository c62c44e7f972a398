package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/NethermindEth/crm-twitter/pkg/utils/errors"
	"github.com/NethermindEth/crm-twitter/pkg/utils/metrics"
)

const DefaultBaseURL = "https://api.twitter.com/1.1/"

// ClientConfig wires a Client to its collaborators.
type ClientConfig struct {
	// HTTPClient issues the requests. It is expected to sign them (see NewOAuth1HTTPClient).
	HTTPClient *http.Client
	// BaseURL is the REST v1.1 root. Defaults to DefaultBaseURL.
	BaseURL string
	// Accounts supplies the CRM's account id, read on every call.
	Accounts AccountIDProvider
	// Reporter receives failing HTTP statuses. Optional.
	Reporter ErrorReporter
	// Notifier receives success message keys. Optional.
	Notifier Notifier
	// RateLimiter paces outgoing calls when set.
	RateLimiter *rate.Limiter
	// Metrics records per-operation latency and outcome when set.
	Metrics *metrics.MetricsCollector
}

// Client talks to the Twitter REST v1.1 API on behalf of the CRM account.
// It holds no state between calls and is safe for concurrent use.
type Client struct {
	client      *http.Client
	baseURL     string
	accounts    AccountIDProvider
	reporter    ErrorReporter
	notifier    Notifier
	rateLimiter *rate.Limiter
	metrics     *metrics.MetricsCollector
}

var _ Gateway = (*Client)(nil)

// NewClient validates config and returns a ready Client.
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil || config.HTTPClient == nil {
		return nil, errors.New(errors.TypeConfig, "new twitter client", ErrInvalidConfig)
	}
	if config.Accounts == nil {
		return nil, errors.New(errors.TypeConfig, "new twitter client", ErrMissingAccountProvider)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.New(errors.TypeConfig, "invalid base url", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	var reporter ErrorReporter = nopReporter{}
	if config.Reporter != nil {
		reporter = config.Reporter
	}
	var notifier Notifier = nopNotifier{}
	if config.Notifier != nil {
		notifier = config.Notifier
	}

	return &Client{
		client:      config.HTTPClient,
		baseURL:     baseURL,
		accounts:    config.Accounts,
		reporter:    reporter,
		notifier:    notifier,
		rateLimiter: config.RateLimiter,
		metrics:     config.Metrics,
	}, nil
}

// encodeQuery percent-encodes v with %20 for spaces so free text survives the
// query string untouched.
func encodeQuery(v url.Values) string {
	return strings.ReplaceAll(v.Encode(), "+", "%20")
}

// call runs one request and hands the body of a 2xx response to decode (when
// non-nil). Metrics cover both steps, so a garbled 2xx counts as a failure.
func (c *Client) call(ctx context.Context, operation, method, path string, query url.Values, decode func(body []byte) error) error {
	fn := func() error {
		body, err := c.doRequest(ctx, operation, method, path, query)
		if err != nil {
			return err
		}
		if decode == nil {
			return nil
		}
		return decode(body)
	}

	var err error
	if c.metrics != nil {
		err = c.metrics.TrackCall(operation, fn)
	} else {
		err = fn()
	}
	if err != nil {
		status, _ := errors.StatusCode(err)
		slog.Warn("twitter call failed",
			"operation", operation,
			"status", status,
			"type", errors.TypeOf(err),
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Client) callList(ctx context.Context, operation, path string, query url.Values) ([]Object, error) {
	var list []Object
	err := c.call(ctx, operation, http.MethodGet, path, query, func(body []byte) error {
		var err error
		list, err = decodeList(operation, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) callObject(ctx context.Context, operation, method, path string, query url.Values) (Object, error) {
	var obj Object
	err := c.call(ctx, operation, method, path, query, func(body []byte) error {
		var err error
		obj, err = decodeObject(operation, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *Client) callNewest(ctx context.Context, operation, path string, query url.Values) (Cursor, error) {
	newest := CursorNone
	err := c.call(ctx, operation, http.MethodGet, path, query, func(body []byte) error {
		var err error
		newest, err = firstIDStr(operation, body)
		return err
	})
	if err != nil {
		return CursorNone, err
	}
	return newest, nil
}

func (c *Client) doRequest(ctx context.Context, operation, method, path string, query url.Values) ([]byte, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, errors.New(errors.TypeTransport, operation+": wait for rate limiter", err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + encodeQuery(query)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, errors.New(errors.TypeValidation, operation+": create request", err)
	}

	slog.Debug("calling twitter", "operation", operation, "method", method, "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.New(errors.TypeTransport, operation+": do request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.TypeTransport, operation+": read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.reporter.ReportStatus(ctx, resp.StatusCode)
		return nil, errors.NewStatus(resp.StatusCode, fmt.Sprintf("%s: %s", operation, errorMessage(body, resp.StatusCode)))
	}

	return body, nil
}

// errorMessage extracts the first Twitter error message from body.
func errorMessage(body []byte, statusCode int) string {
	if msg := gjson.GetBytes(body, "errors.0.message"); msg.Exists() && msg.String() != "" {
		return "twitter API error: " + msg.String()
	}
	return fmt.Sprintf("twitter API error: status code %d", statusCode)
}

func decodeObject(operation string, body []byte) (Object, error) {
	var obj Object
	if err := unmarshalVerbatim(body, &obj); err != nil {
		return nil, errors.New(errors.TypeDecode, operation+": decode response", err)
	}
	return obj, nil
}

func decodeList(operation string, body []byte) ([]Object, error) {
	var list []Object
	if err := unmarshalVerbatim(body, &list); err != nil {
		return nil, errors.New(errors.TypeDecode, operation+": decode response", err)
	}
	if list == nil {
		list = []Object{}
	}
	return list, nil
}

// unmarshalVerbatim decodes a single JSON value into out, keeping numbers as
// json.Number so 64-bit ids keep every digit.
func unmarshalVerbatim(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return ErrTrailingData
	}
	return nil
}

// firstIDStr returns the id_str of the first element of a JSON array, or CursorNone for an empty array.
func firstIDStr(operation string, body []byte) (Cursor, error) {
	if !gjson.ValidBytes(body) {
		return CursorNone, errors.New(errors.TypeDecode, operation+": invalid JSON", nil)
	}
	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return CursorNone, errors.New(errors.TypeDecode, operation+": expected a JSON array", nil)
	}
	items := result.Array()
	if len(items) == 0 {
		return CursorNone, nil
	}
	id := items[0].Get("id_str")
	if !id.Exists() || id.String() == "" {
		return CursorNone, errors.New(errors.TypeDecode, operation+": newest item has no id_str", nil)
	}
	return Cursor(id.String()), nil
}
