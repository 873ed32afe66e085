package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates every table the service reads or writes.  Courts,
// members, roles and grants are owned by club administration; they are
// created here so a fresh database is usable.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS courts (
		id            VARCHAR(64)  NOT NULL PRIMARY KEY,
		club_id       VARCHAR(64)  NOT NULL,
		name          VARCHAR(128) NOT NULL,
		bookable_from CHAR(5)      NOT NULL DEFAULT '07:00',
		bookable_to   CHAR(5)      NOT NULL DEFAULT '22:00',
		KEY idx_courts_club (club_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS roles (
		id   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(64)     NOT NULL UNIQUE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS members (
		id      VARCHAR(64)     NOT NULL PRIMARY KEY,
		club_id VARCHAR(64)     NOT NULL,
		role_id BIGINT UNSIGNED NOT NULL,
		KEY idx_members_club (club_id),
		CONSTRAINT fk_members_role FOREIGN KEY (role_id) REFERENCES roles (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS role_permissions (
		role_id        BIGINT UNSIGNED NOT NULL,
		club_id        VARCHAR(64)     NOT NULL,
		permission_key VARCHAR(64)     NOT NULL,
		granted        TINYINT(1)      NOT NULL DEFAULT 1,
		PRIMARY KEY (role_id, club_id, permission_key),
		CONSTRAINT fk_role_permissions_role FOREIGN KEY (role_id) REFERENCES roles (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id           CHAR(36)      NOT NULL PRIMARY KEY,
		court_id     VARCHAR(64)   NOT NULL,
		user_id      VARCHAR(64)   NOT NULL,
		booking_date CHAR(10)      NOT NULL,
		start_time   CHAR(5)       NOT NULL,
		end_time     CHAR(5)       NOT NULL,
		booking_type VARCHAR(16)   NOT NULL,
		notes        VARCHAR(600)  NOT NULL DEFAULT '',
		status       VARCHAR(16)   NOT NULL DEFAULT 'active',
		price        DECIMAL(10,2) NOT NULL,
		created_at   DATETIME(6)   NOT NULL,
		KEY idx_bookings_court_day (court_id, booking_date, status),
		KEY idx_bookings_user (user_id, booking_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS court_day_locks (
		court_id     VARCHAR(64) NOT NULL,
		booking_date CHAR(10)    NOT NULL,
		PRIMARY KEY (court_id, booking_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates missing tables.  Existing tables are left as they are.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
