// Package notification delivers loss-notification callbacks over HTTP.
package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPSender implements domain.NotificationSender with a plain GET. Any
// status code counts as delivered; the contract is best-effort and callers
// never assert 2xx semantics.
type HTTPSender struct {
	client *http.Client
}

func NewHTTPSender(timeout time.Duration) *HTTPSender {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSender{
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSender) Send(ctx context.Context, url string) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building notification request: %w", err)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return err
	}
	return response.Body.Close()
}
