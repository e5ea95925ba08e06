package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestSessionID_Creation_ValidatesInput tests SessionID creation with various inputs
func TestSessionID_Creation_ValidatesInput(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{name: "ValidID_ShouldSucceed", input: "session-123"},
		{name: "EmptyID_ShouldFail", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewSessionID(tt.input)

			if tt.expectError {
				assert.Error(t, err)
				assert.Empty(t, id.Value(), "Invalid ID should have empty value")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.input, id.Value())
			assert.Equal(t, tt.input, id.String(), "String() should match Value()")
		})
	}
}

// TestSessionID_Generation_IsUnique tests that generated session IDs are unique
func TestSessionID_Generation_IsUnique(t *testing.T) {
	const numIDs = 500
	ids := make(map[string]bool, numIDs)

	for i := 0; i < numIDs; i++ {
		id := GenerateSessionID()
		require.NotEmpty(t, id.Value())
		require.False(t, ids[id.Value()], "duplicate session ID: %s", id.Value())
		ids[id.Value()] = true
	}
}

func TestSession_Creation_StartsUninitialized(t *testing.T) {
	s := NewSession()

	assert.Equal(t, StateUninitialized, s.State())
	assert.Empty(t, s.ProtocolVersion())
	assert.False(t, s.IsReady())
	assert.Nil(t, s.ReadyAt())
	assert.NotEmpty(t, s.ID().Value())
}

// TestSession_Lifecycle_TransitionsCorrectly walks the full handshake
func TestSession_Lifecycle_TransitionsCorrectly(t *testing.T) {
	s := NewSession()

	version, err := s.Initialize("2024-11-05", ClientInfo{Name: "claude", Version: "1.0"})
	require.NoError(t, err)
	assert.Equal(t, "2024-11-05", version)
	assert.Equal(t, StateInitialized, s.State())
	assert.Equal(t, "claude", s.Client().Name)

	require.NoError(t, s.MarkReady())
	assert.Equal(t, StateReady, s.State())
	assert.True(t, s.IsReady())
	assert.NotNil(t, s.ReadyAt())
	assert.Contains(t, s.String(), "ready")
}

func TestSession_InvalidTransitions(t *testing.T) {
	t.Run("ready before initialize", func(t *testing.T) {
		s := NewSession()
		assert.Error(t, s.MarkReady())
		assert.Equal(t, StateUninitialized, s.State())
	})

	t.Run("initialize twice", func(t *testing.T) {
		s := NewSession()
		_, err := s.Initialize("", ClientInfo{})
		require.NoError(t, err)

		_, err = s.Initialize("2025-06-18", ClientInfo{})
		assert.Error(t, err)
		assert.Equal(t, DefaultProtocolVersion, s.ProtocolVersion(), "failed initialize must not change the version")
	})

	t.Run("initialize after ready", func(t *testing.T) {
		s := NewSession()
		_, err := s.Initialize("", ClientInfo{})
		require.NoError(t, err)
		require.NoError(t, s.MarkReady())

		_, err = s.Initialize("", ClientInfo{})
		assert.Error(t, err)
		assert.Equal(t, StateReady, s.State())
	})

	t.Run("ready twice", func(t *testing.T) {
		s := NewSession()
		_, err := s.Initialize("", ClientInfo{})
		require.NoError(t, err)
		require.NoError(t, s.MarkReady())
		assert.Error(t, s.MarkReady())
	})
}

func TestNegotiateVersion(t *testing.T) {
	tests := []struct {
		requested string
		want      string
	}{
		{requested: "", want: DefaultProtocolVersion},
		{requested: "2024-05-14", want: "2024-05-14"},
		{requested: "2025-03-26", want: "2025-03-26"},
		{requested: "1999-01-01", want: SupportedProtocolVersions[0]},
	}

	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			assert.Equal(t, tt.want, NegotiateVersion(tt.requested))
		})
	}
}

// TestNegotiateVersion_AlwaysSupported checks that the answer is always a version we speak
func TestNegotiateVersion_AlwaysSupported(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		requested := rapid.String().Draw(t, "requested")
		got := NegotiateVersion(requested)
		assert.Contains(t, SupportedProtocolVersions, got)
	})
}

func TestSession_ConcurrentReads(t *testing.T) {
	s := NewSession()
	_, err := s.Initialize("", ClientInfo{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.State()
			_ = s.ProtocolVersion()
			_ = s.String()
		}()
	}
	require.NoError(t, s.MarkReady())
	wg.Wait()

	assert.True(t, s.IsReady())
}
