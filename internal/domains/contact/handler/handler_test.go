package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/domains/contact/service"
	"portfolio-backend/internal/infrastructure/email"
)

type fakeQueue struct {
	queued []email.ContactEmailData
	err    error
}

func (q *fakeQueue) EnqueueContactEmail(_ context.Context, data email.ContactEmailData) error {
	if q.err != nil {
		return q.err
	}
	q.queued = append(q.queued, data)
	return nil
}

func post(q *fakeQueue, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(service.NewContactService(q)).RegisterRoutes(r.Group("/api/v1"), func(c *gin.Context) { c.Next() })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.7:5555"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSendMessage(t *testing.T) {
	q := &fakeQueue{}
	rec := post(q, `{"name":"Ada","email":"ada@example.com","message":"Hello, are you available?"}`)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Len(t, q.queued, 1)
	assert.Equal(t, "192.0.2.7", q.queued[0].IPAddress)
}

func TestSendMessage_Errors(t *testing.T) {
	rec := post(&fakeQueue{}, `{"name":"Ada","email":"bad","message":"Hello, are you available?"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body["error"].(map[string]any)["code"])

	rec = post(&fakeQueue{}, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(&fakeQueue{err: errors.New("down")}, `{"name":"Ada","email":"ada@example.com","message":"Hello, are you available?"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
