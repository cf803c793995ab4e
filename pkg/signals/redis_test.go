package signals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	want := Signal{
		Kind:   KindLogout,
		Origin: "proc-42",
		At:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	payload, err := encodeSignal(want)
	require.NoError(t, err)

	got, err := decodeSignal(payload)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeSignal_Invalid(t *testing.T) {
	t.Parallel()

	_, err := decodeSignal([]byte("not json"))
	assert.Error(t, err)

	_, err = decodeSignal([]byte(`{"origin":"x"}`))
	assert.Error(t, err, "missing kind must be rejected")
}

func TestNewRedisBusFromURL_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedisBusFromURL(context.Background(), "://bad", "infrasync:session")
	assert.Error(t, err)
}
