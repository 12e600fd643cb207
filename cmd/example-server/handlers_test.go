package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"primitives-gateway/primitives/application"
	"primitives-gateway/primitives/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(maxWait time.Duration) (*mailboxAPI, *infra.Mailbox) {
	mb := infra.NewMailbox()
	return newMailboxAPI(application.InboxService{Mailbox: mb, MaxWait: maxWait}), mb
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestSendThenReceive(t *testing.T) {
	api, _ := newTestAPI(time.Second)
	h := api.routes()

	w := post(t, h, `{"from":"alice","to":"bob","content":"hello"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var sent messageResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sent))
	assert.Equal(t, "m-1", sent.ID)
	assert.False(t, sent.Timestamp.IsZero())

	r := httptest.NewRequest(http.MethodGet, "/messages/bob", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var got messageResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, "alice", got.From)
}

func TestSendRejectsMissingReceiver(t *testing.T) {
	api, _ := newTestAPI(time.Second)

	assert.Equal(t, http.StatusBadRequest, post(t, api.routes(), `{"from":"alice","content":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, api.routes(), `{`).Code)
}

func TestReceiveTimesOutWithNoContent(t *testing.T) {
	api, _ := newTestAPI(10 * time.Millisecond)

	r := httptest.NewRequest(http.MethodGet, "/messages/bob", nil)
	w := httptest.NewRecorder()
	api.routes().ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestReceiveConflictWhenAlreadyWaiting(t *testing.T) {
	api, mb := newTestAPI(time.Minute)
	h := api.routes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		r := httptest.NewRequest(http.MethodGet, "/messages/bob", nil).WithContext(ctx)
		h.ServeHTTP(httptest.NewRecorder(), r)
	}()

	require.Eventually(t, func() bool { return mb.Waiting("bob") }, time.Second, time.Millisecond)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/messages/bob", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	cancel()
	<-done
	assert.False(t, mb.Waiting("bob"))
}
