package crud

import (
	"context"

	"github.com/conduit-lang/crudkit/pkg/crud/query"
)

// Permissions is the capability a resource consults before each operation.
// T is the record, N the create body and P the replacement body. Denied
// reads, updates and deletes surface as 404; a denied create is 403.
type Permissions[T, N, P any] interface {
	AllowRead(ctx context.Context, subject *Subject, row *T) bool
	FilterList(ctx context.Context, subject *Subject) PermissionFilter
	AllowCreate(ctx context.Context, subject *Subject, value *N) bool
	AllowUpdate(ctx context.Context, subject *Subject, row *T, value *P) bool
	AllowDelete(ctx context.Context, subject *Subject, row *T) bool
}

// AllowAll grants every operation. Embed it and override single methods.
type AllowAll[T, N, P any] struct{}

func (AllowAll[T, N, P]) AllowRead(context.Context, *Subject, *T) bool {
	return true
}

func (AllowAll[T, N, P]) FilterList(context.Context, *Subject) PermissionFilter {
	return KeepAll()
}

func (AllowAll[T, N, P]) AllowCreate(context.Context, *Subject, *N) bool {
	return true
}

func (AllowAll[T, N, P]) AllowUpdate(context.Context, *Subject, *T, *P) bool {
	return true
}

func (AllowAll[T, N, P]) AllowDelete(context.Context, *Subject, *T) bool {
	return true
}

type filterKind int

const (
	keepAll filterKind = iota
	keepNone
	filterBy
)

// PermissionFilter restricts the rows a subject may list.
type PermissionFilter struct {
	kind filterKind
	cond query.Condition
}

// KeepAll lists every row.
func KeepAll() PermissionFilter {
	return PermissionFilter{kind: keepAll}
}

// KeepNone forbids listing.
func KeepNone() PermissionFilter {
	return PermissionFilter{kind: keepNone}
}

// FilterBy lists only rows matching cond.
func FilterBy(cond query.Condition) PermissionFilter {
	return PermissionFilter{kind: filterBy, cond: cond}
}

// Apply restricts q, returning ErrForbidden for KeepNone.
func (f PermissionFilter) Apply(q *query.Select) error {
	switch f.kind {
	case keepNone:
		return ErrForbidden
	case filterBy:
		q.Where(f.cond)
	}
	return nil
}

// RequireSubject returns the request subject or ErrUnauthorized.
func RequireSubject(ctx context.Context) (*Subject, error) {
	s, ok := SubjectFrom(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	return s, nil
}
