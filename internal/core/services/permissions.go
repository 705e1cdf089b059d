package services

import (
	"context"
	"fmt"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
	"github.com/nestdesk/searchcore/internal/logger"
)

// PermissionFilter removes results the requester cannot see. A result
// is retained iff the item is public, the requester owns it, or the
// requester is a member of its workspace. It runs before pagination
// and facet computation so neither can leak counts of hidden items.
type PermissionFilter struct {
	authz driven.Authorizer
}

// NewPermissionFilter creates a permission filter.
func NewPermissionFilter(authz driven.Authorizer) *PermissionFilter {
	return &PermissionFilter{authz: authz}
}

// CheckWorkspaceScope verifies the requester may search the requested
// workspace at all. Distinct from per-item filtering, which silently
// omits rather than errors.
func (f *PermissionFilter) CheckWorkspaceScope(ctx context.Context, userID, workspaceID string) error {
	if workspaceID == "" {
		return nil
	}
	ok, err := f.authz.HasWorkspaceAccess(ctx, userID, workspaceID)
	if err != nil {
		return fmt.Errorf("workspace access check: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: workspace %s", domain.ErrAccessDenied, workspaceID)
	}
	return nil
}

// Filter returns the results visible to userID. Membership answers are
// memoised per workspace within one call; an authorizer failure is
// treated as "no access" for the affected workspace.
func (f *PermissionFilter) Filter(ctx context.Context, results []domain.SearchResult, userID string) []domain.SearchResult {
	membership := make(map[string]bool)
	visible := make([]domain.SearchResult, 0, len(results))

	for i := range results {
		r := &results[i]
		if f.canSee(ctx, r, userID, membership) {
			visible = append(visible, *r)
		}
	}
	return visible
}

func (f *PermissionFilter) canSee(ctx context.Context, r *domain.SearchResult, userID string, membership map[string]bool) bool {
	if r.Visibility == domain.VisibilityPublic {
		return true
	}
	if r.OwnerID == userID {
		return true
	}
	if r.WorkspaceID == "" {
		return false
	}

	allowed, ok := membership[r.WorkspaceID]
	if !ok {
		var err error
		allowed, err = f.authz.HasWorkspaceAccess(ctx, userID, r.WorkspaceID)
		if err != nil {
			logger.Warn("membership check failed for workspace %s: %v", r.WorkspaceID, err)
			allowed = false
		}
		membership[r.WorkspaceID] = allowed
	}
	return allowed
}
