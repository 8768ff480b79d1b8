package http_utils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteError(rec, http.StatusInternalServerError, "boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Action string `json:"action"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"action":"get"}`))
	require.NoError(t, DecodeJSON(req, &v))
	assert.Equal(t, "get", v.Action)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"action":"get","extra":1}`))
	assert.Error(t, DecodeJSON(req, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.EqualError(t, DecodeJSON(req, &v), "request body is empty")
}

func TestErrorMessage(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"error":"capture failed"}`, "capture failed"},
		{"plain failure", "plain failure"},
		{"", "Bad Gateway"},
	}

	for _, tc := range cases {
		resp := &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(strings.NewReader(tc.body)),
		}
		assert.Equal(t, tc.want, ErrorMessage(resp))
	}
}
