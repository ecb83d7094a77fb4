package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	hashes   []string
	payloads [][]byte
	err      error
}

func (f *fakeQueue) Enqueue(_ context.Context, hash string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.hashes = append(f.hashes, hash)
	f.payloads = append(f.payloads, payload)
	return nil
}

const apiKey = "geheime-sleutel"

func doRequest(t *testing.T, queue *fakeQueue, body, key string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(NewHandler(queue, "https://zaken.test"), apiKey)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notificaties", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const eligibleBody = `{
	"kanaal": "zaken",
	"hoofdObject": "https://zaken.test/zaken/abc",
	"resource": "rol",
	"resourceUrl": "https://zaken.test/rollen/def",
	"actie": "create",
	"aanmaakdatum": "2024-05-01T12:00:00Z"
}`

func TestNotificatie_Accepted(t *testing.T) {
	queue := &fakeQueue{}
	rec := doRequest(t, queue, eligibleBody, apiKey)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "accepted")
	require.Len(t, queue.hashes, 1)
	assert.Len(t, queue.hashes[0], 64)
}

func TestNotificatie_DuplicateDeliverySameHash(t *testing.T) {
	queue := &fakeQueue{}
	doRequest(t, queue, eligibleBody, apiKey)
	doRequest(t, queue, eligibleBody, apiKey)

	require.Len(t, queue.hashes, 2)
	assert.Equal(t, queue.hashes[0], queue.hashes[1])
}

func TestNotificatie_IneligibleAcknowledgedNotEnqueued(t *testing.T) {
	// The webhook caller retries every non-2xx forever, so "not for us"
	// must still be a 200.
	body := strings.Replace(eligibleBody, `"resource": "rol"`, `"resource": "status"`, 1)
	queue := &fakeQueue{}
	rec := doRequest(t, queue, body, apiKey)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
	assert.Empty(t, queue.hashes)
}

func TestNotificatie_MalformedBody(t *testing.T) {
	queue := &fakeQueue{}

	rec := doRequest(t, queue, "not json", apiKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, queue, `{"kanaal": "zaken"}`, apiKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, queue.hashes)
}

func TestNotificatie_AuthRequired(t *testing.T) {
	queue := &fakeQueue{}

	rec := doRequest(t, queue, eligibleBody, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, queue, eligibleBody, "verkeerde-sleutel")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Empty(t, queue.hashes)
}

func TestNotificatie_EnqueueFailure(t *testing.T) {
	queue := &fakeQueue{err: assert.AnError}
	rec := doRequest(t, queue, eligibleBody, apiKey)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	router := NewRouter(NewHandler(&fakeQueue{}, ""), apiKey)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
