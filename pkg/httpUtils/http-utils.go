package http_utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxRequestBodyBytes bounds JSON request bodies accepted by DecodeJSON.
const MaxRequestBodyBytes = 64 << 10

type errorEnvelope struct {
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes the uniform {"error": message} envelope.
func WriteError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, errorEnvelope{Error: message})
}

// DecodeJSON strictly decodes a bounded request body into v.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	decoder := json.NewDecoder(io.LimitReader(r.Body, MaxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}

// ErrorMessage extracts the error envelope from a non-2xx response, falling
// back to the raw body or the status text.
func ErrorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxRequestBodyBytes))

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return http.StatusText(resp.StatusCode)
}
