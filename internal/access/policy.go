// Package access decides whether a caller may act on a resource.
//
// Checks return a Decision instead of aborting the request so that the
// caller chooses how a denial is reported.
package access

import (
	"cms-server/internal/domain"
)

type Verdict int

const (
	Allow Verdict = iota
	DenyUnauthenticated
	DenyForbidden
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Verdict Verdict
	Reason  string
}

func allow() Decision { return Decision{Verdict: Allow} }

func (d Decision) Allowed() bool { return d.Verdict == Allow }

// Err converts a denial into a domain error; it is nil when the decision allows.
func (d Decision) Err() error {
	switch d.Verdict {
	case DenyUnauthenticated:
		return domain.NewError(domain.ErrUnauthenticated, d.Reason)
	case DenyForbidden:
		return domain.NewError(domain.ErrForbidden, d.Reason)
	}
	return nil
}

const (
	ReasonAuthenticationRequired = "Authentication required"
	ReasonInsufficientRole       = "Insufficient permissions"
)

// Authenticated requires a resolved identity.
func Authenticated(id domain.Identity) Decision {
	if !id.Authenticated() {
		return Decision{Verdict: DenyUnauthenticated, Reason: ReasonAuthenticationRequired}
	}
	return allow()
}

// RequireRole requires an identity holding one of roles.
func RequireRole(id domain.Identity, roles ...domain.Role) Decision {
	if d := Authenticated(id); !d.Allowed() {
		return d
	}
	for _, r := range roles {
		if id.Role == r {
			return allow()
		}
	}
	return Decision{Verdict: DenyForbidden, Reason: ReasonInsufficientRole}
}

// Action is a mutation on a piece of content.
type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// CanModifyContent applies the owner-or-admin rule.
func CanModifyContent(id domain.Identity, c *domain.Content, action Action) Decision {
	if d := Authenticated(id); !d.Allowed() {
		return d
	}
	if c.AuthorID == id.UserID || id.Role == domain.RoleAdmin {
		return allow()
	}
	return Decision{Verdict: DenyForbidden, Reason: "Not authorized to " + string(action) + " this content"}
}

// ListFilter combines the caller's explicit status/author filters with the visibility
// restriction for their role. Explicit filters never widen what the caller may see.
func ListFilter(id domain.Identity, status domain.ContentStatus, authorID int64) domain.ContentFilter {
	f := domain.ContentFilter{Status: status, AuthorID: authorID}
	switch {
	case id.IsAdmin():
		f.Visibility = domain.VisibilityAll
	case id.Authenticated():
		f.Visibility = domain.VisibilityPublishedOrOwn
		f.ViewerID = id.UserID
	default:
		f.Visibility = domain.VisibilityPublished
	}
	return f
}
