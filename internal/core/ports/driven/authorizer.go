package driven

import "context"

// Authorizer is the external authorization collaborator. Membership is
// owned elsewhere; the search subsystem only asks questions.
type Authorizer interface {
	// HasWorkspaceAccess reports whether the user is a member of the
	// workspace.
	HasWorkspaceAccess(ctx context.Context, userID, workspaceID string) (bool, error)
}
