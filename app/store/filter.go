package store

import (
	"fmt"
	"strings"
	"time"
)

// SearchFilter describes the optional predicates of a filtered user search.
// LoginBefore and LoginAfter are expected to be clamped to day boundaries by
// the caller.
type SearchFilter struct {
	Active      *bool
	Name        string
	LoginBefore *time.Time
	LoginAfter  *time.Time
}

// IsZero reports whether no predicate is set.
func (f SearchFilter) IsZero() bool {
	return f.Active == nil && f.Name == "" && f.LoginBefore == nil && f.LoginAfter == nil
}

// buildSearchQuery translates a SearchFilter into one SQL statement.
//
// User predicates (status equality, name substring) land in the WHERE
// clause. Session predicates land in the join's ON clause so that a left
// join cannot drop users without sessions. When both date bounds are set the
// session predicate is their inclusive OR: sessions before the "before"
// cutoff or after the "after" cutoff, a union rather than an intersection.
//
// The join is INNER when no user predicate is set (only users with at least
// one matching session survive) and LEFT otherwise (a user filter alone must
// not exclude session-less users). DISTINCT collapses the row fan-out of the
// one-to-many join.
func buildSearchQuery(f SearchFilter) (string, []any) {
	var (
		userConds []string
		sessConds []string
		args      []any
	)
	next := func() int { return len(args) + 1 }

	if f.Active != nil {
		userConds = append(userConds, fmt.Sprintf("u.status = $%d", next()))
		args = append(args, *f.Active)
	}
	if f.Name != "" {
		userConds = append(userConds, fmt.Sprintf("u.name LIKE '%%' || $%d || '%%'", next()))
		args = append(args, f.Name)
	}

	switch {
	case f.LoginBefore != nil && f.LoginAfter != nil:
		sessConds = append(sessConds,
			fmt.Sprintf("(s.created_at <= $%d OR s.created_at >= $%d)", next(), next()+1))
		args = append(args, *f.LoginBefore, *f.LoginAfter)
	case f.LoginBefore != nil:
		sessConds = append(sessConds, fmt.Sprintf("s.created_at <= $%d", next()))
		args = append(args, *f.LoginBefore)
	case f.LoginAfter != nil:
		sessConds = append(sessConds, fmt.Sprintf("s.created_at >= $%d", next()))
		args = append(args, *f.LoginAfter)
	}

	join := "JOIN"
	if len(userConds) > 0 {
		join = "LEFT JOIN"
	}

	on := "s.user_id = u.id"
	if len(sessConds) > 0 {
		on += " AND " + strings.Join(sessConds, " AND ")
	}

	var b strings.Builder
	b.WriteString("SELECT DISTINCT u.id, u.name, u.email, u.password, u.cellphone, u.status, u.created_at")
	b.WriteString(" FROM users u ")
	b.WriteString(join)
	b.WriteString(" sessions s ON ")
	b.WriteString(on)
	if len(userConds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(userConds, " AND "))
	}
	b.WriteString(" ORDER BY u.id")

	return b.String(), args
}
