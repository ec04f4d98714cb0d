package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/cloudplaya/pkg/criteria"
	"github.com/Sternrassler/cloudplaya/pkg/payload"
)

// Header names sent on every authorized call.
const (
	HeaderRequestID     = "x-amzn-RequestId"
	HeaderADPToken      = "x-adp-token"
	HeaderRequestedWith = "x-RequestedWith"
)

// NewRequestID returns a per-call trace id of the form
// xxxxxxxx-xxxx-dmcp-xxxx-xxxxxxxxxxxx built from seven random 16-bit
// hex segments. It is a correlation id, not a secret.
func NewRequestID() string {
	seg := func() any {
		// Formatting a value from [0x10000, 0x20000) and dropping the
		// leading "1" yields exactly four hex digits.
		return strconv.FormatInt(int64(0x10000+rand.IntN(0x10000)), 16)[1:]
	}
	return fmt.Sprintf("%s%s-%s-dmcp-%s-%s%s%s", seg(), seg(), seg(), seg(), seg(), seg(), seg())
}

// Call performs one authorized operation and returns the decoded response
// body. Rejections by the remote come back as *RemoteRequestError and
// network failures as *TransportError.
func (c *Client) Call(ctx context.Context, operation string, params criteria.Params) (payload.Object, error) {
	if c.creds == nil {
		return nil, ErrNotAuthenticated
	}
	creds := *c.creds

	body := make(criteria.Params, len(params)+5)
	body.Merge(params)
	body.Merge(criteria.Params{
		"Operation":               operation,
		"ContentType":             "JSON",
		"customerInfo.customerId": creds.CustomerID,
		"customerInfo.deviceId":   creds.DeviceID,
		"customerInfo.deviceType": creds.DeviceType,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL,
		strings.NewReader(body.Values().Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := NewRequestID()
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set(HeaderADPToken, creds.ADPToken)
	req.Header.Set(HeaderRequestedWith, "XMLHttpRequest")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Referer", c.config.Referer)
	req.Header.Set("Origin", c.config.Origin)
	req.Header.Set("Cookie", creds.Cookies)
	if c.config.Host != "" {
		req.Host = c.config.Host
	}

	c.logger.Debug().
		Str("operation", operation).
		Str("request_id", requestID).
		Int("params", len(body)).
		Msg("Executing Cirrus request")

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(operation, requestID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(operation, requestID, fmt.Errorf("read body: %w", err))
	}

	requestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remote := remoteError(operation, resp.StatusCode, raw)
		errorsTotal.WithLabelValues(kindRemote).Inc()
		c.logger.Warn().
			Str("operation", operation).
			Str("request_id", requestID).
			Int("status", resp.StatusCode).
			Str("code", remote.Code).
			Msg("Cirrus request rejected")
		return nil, remote
	}

	var result payload.Object
	if err := decodeJSON(raw, &result); err != nil {
		errorsTotal.WithLabelValues(kindPayload).Inc()
		return nil, fmt.Errorf("decode %s response: %w", operation, err)
	}
	return result, nil
}

func (c *Client) transportError(operation, requestID string, err error) error {
	errorsTotal.WithLabelValues(kindTransport).Inc()
	requestsTotal.WithLabelValues(operation, "transport_error").Inc()
	c.logger.Error().
		Err(err).
		Str("operation", operation).
		Str("request_id", requestID).
		Msg("Cirrus request failed")
	return &TransportError{Operation: operation, Err: err}
}

// remoteError reads Error.Message / Error.Code from a rejection body. Bodies
// without that envelope fall back to the HTTP status.
func remoteError(operation string, status int, raw []byte) *RemoteRequestError {
	remote := &RemoteRequestError{
		Operation:  operation,
		StatusCode: status,
		Message:    http.StatusText(status),
		Code:       strconv.Itoa(status),
	}

	var body any
	if err := decodeJSON(raw, &body); err != nil {
		return remote
	}
	envelope, err := payload.NavigateObject(body, "Error")
	if err != nil {
		return remote
	}
	if _, ok := envelope["Message"]; ok {
		remote.Message = payload.String(envelope, "Message")
	}
	if _, ok := envelope["Code"]; ok {
		remote.Code = payload.String(envelope, "Code")
	}
	return remote
}

// decodeJSON decodes exactly one JSON value from raw.
func decodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON value")
	}
	return nil
}
