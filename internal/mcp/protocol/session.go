package protocol

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SessionManager tracks connected MCP clients. Sessions exist so the
// multi-client HTTP transport can attribute requests, count errors, and
// sweep out clients that went quiet without disconnecting.
type SessionManager struct {
	logger   *logrus.Logger
	sessions map[string]*ClientSession
	mu       sync.RWMutex
}

// ClientSession represents an active MCP client session
type ClientSession struct {
	ID            string    `json:"id"`
	ClientName    string    `json:"client_name,omitempty"`
	ClientVersion string    `json:"client_version,omitempty"`
	ConnectedAt   time.Time `json:"connected_at"`
	LastActivity  time.Time `json:"last_activity"`
	RequestCount  int64     `json:"request_count"`
	ErrorCount    int64     `json:"error_count"`
}

// NewSessionManager creates a new session manager
func NewSessionManager(logger *logrus.Logger) *SessionManager {
	return &SessionManager{
		logger:   logger,
		sessions: make(map[string]*ClientSession),
	}
}

// CreateSession creates a new client session. The clientInfo map follows the
// MCP initialize shape: an optional "clientInfo" entry with name and version.
func (sm *SessionManager) CreateSession(clientID string, clientInfo map[string]interface{}) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[clientID]; exists {
		return fmt.Errorf("session already exists for client %s", clientID)
	}

	clientName := "unknown"
	clientVersion := "unknown"
	if raw, exists := clientInfo["clientInfo"]; exists {
		if clientMap, ok := raw.(map[string]interface{}); ok {
			if name, ok := clientMap["name"].(string); ok {
				clientName = name
			}
			if version, ok := clientMap["version"].(string); ok {
				clientVersion = version
			}
		}
	}

	now := time.Now()
	sm.sessions[clientID] = &ClientSession{
		ID:            clientID,
		ClientName:    clientName,
		ClientVersion: clientVersion,
		ConnectedAt:   now,
		LastActivity:  now,
	}

	sm.logger.WithFields(logrus.Fields{
		"client_id":      clientID,
		"client_name":    clientName,
		"client_version": clientVersion,
	}).Info("Created new MCP client session")

	return nil
}

// GetSession retrieves a copy of a client session
func (sm *SessionManager) GetSession(clientID string) (*ClientSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[clientID]
	if !exists {
		return nil, false
	}
	sessionCopy := *session
	return &sessionCopy, true
}

// UpdateClientActivity stamps the last activity time and counts the request
func (sm *SessionManager) UpdateClientActivity(clientID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, exists := sm.sessions[clientID]; exists {
		session.LastActivity = time.Now()
		session.RequestCount++
	}
}

// RecordError counts a failed request against a client session
func (sm *SessionManager) RecordError(clientID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, exists := sm.sessions[clientID]; exists {
		session.ErrorCount++
	}
}

// RemoveSession removes a client session
func (sm *SessionManager) RemoveSession(clientID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, exists := sm.sessions[clientID]; exists {
		sm.logger.WithFields(logrus.Fields{
			"client_id":     clientID,
			"duration":      time.Since(session.ConnectedAt).String(),
			"request_count": session.RequestCount,
			"error_count":   session.ErrorCount,
		}).Info("Removed MCP client session")

		delete(sm.sessions, clientID)
	}
}

// GetSessionCount returns the number of active sessions
func (sm *SessionManager) GetSessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// CleanupExpiredSessions removes sessions idle for longer than maxInactivity
// and returns how many were removed.
func (sm *SessionManager) CleanupExpiredSessions(maxInactivity time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	removed := 0

	for clientID, session := range sm.sessions {
		if now.Sub(session.LastActivity) <= maxInactivity {
			continue
		}
		sm.logger.WithFields(logrus.Fields{
			"client_id":     clientID,
			"inactive_time": now.Sub(session.LastActivity).String(),
		}).Info("Removed expired MCP client session")
		delete(sm.sessions, clientID)
		removed++
	}

	return removed
}

// GetStats returns session manager statistics
func (sm *SessionManager) GetStats() map[string]interface{} {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	totalRequests := int64(0)
	totalErrors := int64(0)
	for _, session := range sm.sessions {
		totalRequests += session.RequestCount
		totalErrors += session.ErrorCount
	}

	return map[string]interface{}{
		"active_sessions": len(sm.sessions),
		"total_requests":  totalRequests,
		"total_errors":    totalErrors,
	}
}
