// Package identity resolves the authenticating user's name and group
// memberships from the host's name service (spec.md §4.3). This is one of
// the external collaborators spec.md §1 calls out as out of the core's
// scope to reimplement, but it still needs a concrete Go-native
// implementation to drive the pipeline end to end.
package identity

import (
	"os/user"

	"github.com/l0p7/hbacd/internal/herr"
)

// Subject is the resolved request subject (spec.md §3 "User").
type Subject struct {
	Name   string
	Groups map[string]struct{}
}

// Resolver looks users up against the host's name service.
type Resolver struct {
	lookup    func(string) (*user.User, error)
	groupIDs  func(*user.User) ([]string, error)
	groupByID func(string) (*user.Group, error)
}

// NewResolver builds a Resolver backed by os/user.
func NewResolver() *Resolver {
	return &Resolver{
		lookup: user.Lookup,
		groupIDs: func(u *user.User) ([]string, error) {
			return u.GroupIds()
		},
		groupByID: user.LookupGroupId,
	}
}

// Resolve builds the Subject for name (spec.md §4.3).
func (r *Resolver) Resolve(name string) (Subject, error) {
	u, err := r.lookup(name)
	if err != nil {
		return Subject{}, herr.WrapIdent(herr.KindUnknownUser, "identity.resolve", name, err)
	}

	gids, err := r.groupIDs(u)
	if err != nil {
		return Subject{}, herr.WrapIdent(herr.KindUnknownUser, "identity.resolve", name, err)
	}

	groups := make(map[string]struct{}, len(gids))
	for _, gid := range gids {
		g, err := r.groupByID(gid)
		if err != nil {
			// Any one group resolution failing leaves the subject
			// incomplete (spec.md §4.3).
			return Subject{}, herr.WrapIdent(herr.KindUnknownUser, "identity.resolve", name, err)
		}
		groups[g.Name] = struct{}{}
	}

	return Subject{Name: u.Username, Groups: groups}, nil
}

// GroupList returns s.Groups as a slice, for building a RequestElement.
func (s Subject) GroupList() []string {
	out := make([]string, 0, len(s.Groups))
	for g := range s.Groups {
		out = append(out, g)
	}
	return out
}
