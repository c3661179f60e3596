// Package testutil provides shared test utilities and trajectory fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// TUMTrajectory builds a TUM fixture of the given length: identity rotations
// with the translation advancing 0.1 m per frame along X.
func TUMTrajectory(frames int) string {
	var b strings.Builder
	for i := 0; i < frames; i++ {
		fmt.Fprintf(&b, "%06d %.6f 0.200000 0.300000 0.000000 0.000000 0.000000 1.000000\n",
			i, float64(i)*0.1)
	}
	return b.String()
}

// WriteTUMFile writes a TUMTrajectory fixture to path.
func WriteTUMFile(t *testing.T, path string, frames int) {
	t.Helper()
	if err := os.WriteFile(path, []byte(TUMTrajectory(frames)), 0644); err != nil {
		t.Fatalf("Failed to write TUM fixture %s: %v", path, err)
	}
}
