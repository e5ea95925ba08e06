package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionID is a value object representing a unique session identifier
type SessionID struct {
	value string
}

// NewSessionID creates a new SessionID with validation
func NewSessionID(value string) (SessionID, error) {
	if value == "" {
		return SessionID{}, fmt.Errorf("session ID cannot be empty")
	}
	return SessionID{value: value}, nil
}

// GenerateSessionID creates a new unique SessionID
func GenerateSessionID() SessionID {
	return SessionID{value: uuid.NewString()}
}

// Value returns the string value of the SessionID
func (s SessionID) Value() string {
	return s.value
}

// String implements the Stringer interface
func (s SessionID) String() string {
	return s.value
}

// State represents the handshake state of a protocol session
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitialized   State = "initialized"
	StateReady         State = "ready"
)

// Supported protocol versions, newest first
var SupportedProtocolVersions = []string{
	"2025-06-18",
	"2025-03-26",
	"2024-11-05",
	"2024-05-14",
}

// DefaultProtocolVersion is used when the client does not declare one
const DefaultProtocolVersion = "2024-11-05"

// ClientInfo describes the peer as declared in initialize
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Session is the single protocol session served over stdio.
// Only the handshake methods mutate it.
type Session struct {
	mu              sync.RWMutex
	id              SessionID
	state           State
	protocolVersion string
	client          ClientInfo
	createdAt       time.Time
	readyAt         *time.Time
}

// NewSession creates a session in the Uninitialized state
func NewSession() *Session {
	return NewSessionWithID(GenerateSessionID())
}

// NewSessionWithID creates a session with a specific ID
func NewSessionWithID(id SessionID) *Session {
	return &Session{
		id:        id,
		state:     StateUninitialized,
		createdAt: time.Now(),
	}
}

// ID returns the session ID
func (s *Session) ID() SessionID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// State returns the current handshake state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ProtocolVersion returns the negotiated protocol version, empty before initialize
func (s *Session) ProtocolVersion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.protocolVersion
}

// Client returns the client info captured during initialize
func (s *Session) Client() ClientInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// IsReady returns true once the handshake has completed
func (s *Session) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateReady
}

// ReadyAt returns when the session became ready, nil before that
func (s *Session) ReadyAt() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readyAt
}

// NegotiateVersion picks the version to answer with for a client-declared version.
// Known versions are echoed, an empty one falls back to the default and anything
// else is answered with the newest version this server speaks.
func NegotiateVersion(requested string) string {
	if requested == "" {
		return DefaultProtocolVersion
	}
	for _, v := range SupportedProtocolVersions {
		if v == requested {
			return v
		}
	}
	return SupportedProtocolVersions[0]
}

// Initialize moves the session from Uninitialized to Initialized and returns the
// negotiated protocol version
func (s *Session) Initialize(requestedVersion string, client ClientInfo) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUninitialized {
		return "", fmt.Errorf("session can only be initialized once, current state: %s", s.state)
	}

	s.protocolVersion = NegotiateVersion(requestedVersion)
	s.client = client
	s.state = StateInitialized

	return s.protocolVersion, nil
}

// MarkReady moves the session from Initialized to Ready
func (s *Session) MarkReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInitialized {
		return fmt.Errorf("session can only become ready from initialized state, current state: %s", s.state)
	}

	now := time.Now()
	s.readyAt = &now
	s.state = StateReady

	return nil
}

// String returns a string representation of the session
func (s *Session) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fmt.Sprintf("Session{ID: %s, State: %s, ProtocolVersion: %s}",
		s.id.Value(),
		s.state,
		s.protocolVersion,
	)
}
