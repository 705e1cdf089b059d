package memory

import (
	"context"
	"sync"

	"github.com/nestdesk/searchcore/internal/core/ports/driven"
)

// Ensure Authorizer implements the interface.
var _ driven.Authorizer = (*Authorizer)(nil)

// membership is one user-workspace pair.
type membership struct {
	userID      string
	workspaceID string
}

// Authorizer is an in-memory implementation of driven.Authorizer with
// explicit membership grants. Err, when set, is returned by every
// check; tests use it to simulate an unavailable authorization service.
type Authorizer struct {
	mu      sync.RWMutex
	members map[membership]bool

	// Err forces every check to fail with this error.
	Err error
}

// NewAuthorizer creates a new in-memory authorizer with no grants.
func NewAuthorizer() *Authorizer {
	return &Authorizer{
		members: make(map[membership]bool),
	}
}

// Grant makes the user a member of the workspace.
func (a *Authorizer) Grant(userID, workspaceID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.members[membership{userID, workspaceID}] = true
}

// Revoke removes the user's membership of the workspace.
func (a *Authorizer) Revoke(userID, workspaceID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.members, membership{userID, workspaceID})
}

// HasWorkspaceAccess reports whether the user is a member of the
// workspace.
func (a *Authorizer) HasWorkspaceAccess(_ context.Context, userID, workspaceID string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.Err != nil {
		return false, a.Err
	}
	return a.members[membership{userID, workspaceID}], nil
}
