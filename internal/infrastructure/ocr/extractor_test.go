package ocr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rdzcn/weight-tracker/internal/config"
	"github.com/rdzcn/weight-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeight_PoundsReading(t *testing.T) {
	v, err := ParseWeight("Current reading: 182.4 lbs")
	require.NoError(t, err)
	assert.Equal(t, 182.4, v)
}

func TestParseWeight_KilogramsReading(t *testing.T) {
	v, err := ParseWeight("72kg")
	require.NoError(t, err)
	assert.Equal(t, 72.0, v)
}

func TestParseWeight_IntegerReading(t *testing.T) {
	v, err := ParseWeight("weight 81")
	require.NoError(t, err)
	assert.Equal(t, 81.0, v)
}

func TestParseWeight_NoNumber(t *testing.T) {
	_, err := ParseWeight("no digits here")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))
}

func TestExtractWeight_Unconfigured(t *testing.T) {
	c := NewClient(&config.Config{})
	_, err := c.ExtractWeight(context.Background(), []byte{0x1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))
}

func TestExtractWeight_ServiceRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("Current reading: 182.4 lbs"))
	}))
	defer srv.Close()

	c := NewClient(&config.Config{OCREndpoint: srv.URL, OCRAPIKey: "test-key"})
	v, err := c.ExtractWeight(context.Background(), []byte("fake-photo"))

	require.NoError(t, err)
	assert.Equal(t, 182.4, v)
}

func TestExtractWeight_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(&config.Config{OCREndpoint: srv.URL})
	_, err := c.ExtractWeight(context.Background(), []byte("fake-photo"))

	assert.Error(t, err)
}
