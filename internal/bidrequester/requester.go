// Package bidrequester wraps the HTTP exchange with external bidding
// endpoints. It supplies bids to the auction; the auction itself never
// initiates outbound requests.
package bidrequester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"openrtb-auction/internal/openrtb"
)

// ErrorKind classifies a failed bid request.
type ErrorKind string

const (
	// KindNoBidResponse means the endpoint answered 204: it chose not to bid.
	KindNoBidResponse ErrorKind = "NoBidResponse"
	// KindInvalidBidRequest means the endpoint rejected the request as malformed.
	KindInvalidBidRequest ErrorKind = "InvalidBidRequest"
	// KindUnexpected covers every other failure.
	KindUnexpected ErrorKind = "Unexpected"
)

// Error is the typed failure returned by Request.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("bid request failed (%s): %s", e.Kind, e.Message)
}

// Options configures outbound bid requests. Zero values fall back to the
// requester defaults.
type Options struct {
	DataFormat     string
	AcceptEncoding string
	Version        string
	Headers        map[string]string
	Timeout        time.Duration
}

func (o Options) withDefaults(defaults Options) Options {
	merged := defaults
	if o.DataFormat != "" {
		merged.DataFormat = o.DataFormat
	}
	if o.AcceptEncoding != "" {
		merged.AcceptEncoding = o.AcceptEncoding
	}
	if o.Version != "" {
		merged.Version = o.Version
	}
	if o.Timeout != 0 {
		merged.Timeout = o.Timeout
	}
	if len(o.Headers) > 0 {
		headers := make(map[string]string, len(merged.Headers)+len(o.Headers))
		for k, v := range merged.Headers {
			headers[k] = v
		}
		for k, v := range o.Headers {
			headers[k] = v
		}
		merged.Headers = headers
	}
	return merged
}

// Requester posts OpenRTB bid requests to bidding endpoints.
type Requester struct {
	client   *http.Client
	defaults Options
}

func New(defaults Options) *Requester {
	if defaults.DataFormat == "" {
		defaults.DataFormat = "application/json"
	}
	if defaults.AcceptEncoding == "" {
		defaults.AcceptEncoding = "gzip"
	}
	if defaults.Version == "" {
		defaults.Version = "2.6"
	}
	if defaults.Timeout == 0 {
		defaults.Timeout = 2 * time.Second
	}
	return &Requester{
		client:   &http.Client{},
		defaults: defaults,
	}
}

// Request posts the bid request to the endpoint and decodes the response.
// 204 and 400 map to typed errors per the OpenRTB exchange contract.
func (r *Requester) Request(ctx context.Context, endpoint string, request *openrtb.BidRequest, opts ...Options) (*openrtb.BidResponse, error) {
	options := r.defaults
	if len(opts) > 0 {
		options = opts[0].withDefaults(r.defaults)
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encoding bid request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, options.Timeout)
	defer cancel()

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building bid request: %w", err)
	}
	for key, value := range options.Headers {
		httpRequest.Header.Set(key, value)
	}
	httpRequest.Header.Set("Content-Type", options.DataFormat)
	httpRequest.Header.Set("Accept-Encoding", options.AcceptEncoding)
	httpRequest.Header.Set("x-openrtb-version", options.Version)

	httpResponse, err := r.client.Do(httpRequest)
	if err != nil {
		return nil, &Error{Kind: KindUnexpected, Message: err.Error()}
	}
	defer httpResponse.Body.Close()

	switch httpResponse.StatusCode {
	case http.StatusOK:
		var response openrtb.BidResponse
		if err := json.NewDecoder(httpResponse.Body).Decode(&response); err != nil {
			return nil, &Error{Kind: KindUnexpected, Message: fmt.Sprintf("decoding bid response: %v", err)}
		}
		return &response, nil
	case http.StatusNoContent:
		return nil, &Error{Kind: KindNoBidResponse, Message: "no bid response received from the auction"}
	case http.StatusBadRequest:
		message := "required parameters are missing or malformed"
		if text, err := io.ReadAll(httpResponse.Body); err == nil && len(text) > 0 {
			message = string(text)
		}
		return nil, &Error{Kind: KindInvalidBidRequest, Message: message}
	default:
		return nil, &Error{Kind: KindUnexpected, Message: fmt.Sprintf("unexpected HTTP response: received status code %d", httpResponse.StatusCode)}
	}
}
