package secret

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewExpose(t *testing.T) {
	s := New("s3cr3t")
	require.Equal(t, "s3cr3t", s.Expose())
	require.Equal(t, 6, s.Len())
}

func TestRelease(t *testing.T) {
	s := New("s3cr3t")
	s.Release()
	require.Equal(t, "", s.Expose())
	require.Equal(t, 0, s.Len())
}

func TestZeroValueIsEmpty(t *testing.T) {
	var s String
	require.Equal(t, "", s.Expose())
	require.Equal(t, 0, s.Len())
}

func TestReleaseScrubsBackingBuffer(t *testing.T) {
	s := New("s3cr3t")
	buf := s.buf
	s.Release()
	for _, b := range buf {
		require.Equal(t, byte(0), b)
	}
}
