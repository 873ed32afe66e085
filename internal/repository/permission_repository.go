package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/court-booking/internal/model"
)

// Permission keys stored in role_permissions.permission_key.
const (
	PermCanBook           = "can_book"
	PermCanBookPublic     = "can_book_public"
	PermCanViewStatistics = "can_view_statistics"
)

// adminRoles bypass per-permission grants entirely.
var adminRoles = map[string]bool{
	"admin":         true,
	"administrator": true,
	"superadmin":    true,
	"systemadmin":   true,
}

// PermissionRepo answers "may this member do X" questions from the
// members, roles and role_permissions tables.  Grants are scoped to the
// member's club: a role only carries the permissions granted to it in
// that club.
type PermissionRepo struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewPermissionRepo returns a PermissionRepo bound to the given database.
func NewPermissionRepo(db *sql.DB, log *logrus.Logger) *PermissionRepo {
	return &PermissionRepo{db: db, log: log}
}

// HasPermission reports whether the member holds the permission key.  It
// fails closed: unknown members, unknown roles and any lookup error all
// yield false.
func (r *PermissionRepo) HasPermission(ctx context.Context, userID, key string) bool {
	ok, err := r.lookup(ctx, userID, key)
	if err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"user_id":    userID,
			"permission": key,
		}).Warn("permission lookup failed, denying")
		return false
	}
	if !ok {
		r.log.WithFields(logrus.Fields{"user_id": userID, "permission": key}).Debug("permission denied")
	}
	return ok
}

func (r *PermissionRepo) lookup(ctx context.Context, userID, key string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	const q = `SELECT m.role_id, m.club_id, r.name
               FROM members m
               JOIN roles r ON r.id = m.role_id
               WHERE m.id = ?`
	m := model.Member{ID: userID}
	var role model.Role
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&m.RoleID, &m.ClubID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if adminRoles[strings.ToLower(role.Name)] {
		return true, nil
	}

	const pq = `SELECT COUNT(*) FROM role_permissions
                WHERE role_id = ? AND club_id = ? AND permission_key = ? AND granted = 1`
	var n int
	if err := r.db.QueryRowContext(ctx, pq, m.RoleID, m.ClubID, key).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
