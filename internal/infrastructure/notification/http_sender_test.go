package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_DeliversGET(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		assert.Equal(t, http.MethodGet, r.Method)
	}))
	defer server.Close()

	sender := NewHTTPSender(0)
	require.NoError(t, sender.Send(context.Background(), server.URL+"/loss?p=5.01"))
	assert.Equal(t, "/loss?p=5.01", gotPath)
}

func TestSend_NonSuccessStatusIsStillDelivered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	// Best-effort contract: any HTTP status counts as sent.
	assert.NoError(t, NewHTTPSender(0).Send(context.Background(), server.URL))
}

func TestSend_TransportFailure(t *testing.T) {
	assert.Error(t, NewHTTPSender(0).Send(context.Background(), "http://127.0.0.1:1/loss"))
}
