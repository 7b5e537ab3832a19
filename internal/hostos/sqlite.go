package hostos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/madmax/chardev-core/internal/infrastructure/database"
)

// schema is the host registry schema. It is applied idempotently when
// the host is created; there is no separate migration step.
const schema = `
CREATE TABLE IF NOT EXISTS host_majors (
	major        INTEGER PRIMARY KEY,
	device_name  TEXT NOT NULL UNIQUE,
	allocated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS host_classes (
	id         TEXT PRIMARY KEY,
	owner      TEXT NOT NULL,
	name       TEXT NOT NULL,
	registered INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_host_classes_name
	ON host_classes(name) WHERE registered = 1;

CREATE TABLE IF NOT EXISTS host_nodes (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	class_id   TEXT NOT NULL REFERENCES host_classes(id),
	major      INTEGER NOT NULL,
	minor      INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
`

// SQLiteHost is a Host implementation backed by SQLite.
//
// Registration bookkeeping (held majors, registered classes, created
// nodes) is persisted, so it survives restarts and can be inspected out
// of process. The device's message slot is never persisted here.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Check-then-insert
//     sequences are serialised behind a mutex.
type SQLiteHost struct {
	db *database.DB
	mu sync.Mutex
}

// NewSQLiteHost creates a SQLite-backed host registry and applies the
// schema.
//
// Parameters:
//   - ctx: Context for schema application
//   - db: Open database connection
//
// Returns:
//   - *SQLiteHost: Ready host registry
//   - error: If the schema cannot be applied
func NewSQLiteHost(ctx context.Context, db *database.DB) (*SQLiteHost, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("applying host registry schema: %w", err)
	}
	return &SQLiteHost{db: db}, nil
}

// AllocateMajor implements Host. Majors are handed out from the top of
// the dynamic range downward.
func (h *SQLiteHost) AllocateMajor(ctx context.Context, deviceName string) (Major, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var existing int
	err := h.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM host_majors WHERE device_name = ?", deviceName,
	).Scan(&existing)
	if err != nil {
		return 0, fmt.Errorf("checking device name: %w", err)
	}
	if existing > 0 {
		return 0, ErrNameTaken
	}

	taken := make(map[Major]bool)
	rows, err := h.db.DB.QueryContext(ctx, "SELECT major FROM host_majors")
	if err != nil {
		return 0, fmt.Errorf("listing majors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m Major
		if err := rows.Scan(&m); err != nil {
			return 0, fmt.Errorf("scanning major: %w", err)
		}
		taken[m] = true
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("listing majors: %w", err)
	}

	for m := DynamicMajorMax; m >= DynamicMajorMin; m-- {
		if !taken[m] {
			_, err := h.db.ExecContext(ctx,
				"INSERT INTO host_majors (major, device_name, allocated_at) VALUES (?, ?, ?)",
				m, deviceName, now(),
			)
			if err != nil {
				return 0, fmt.Errorf("recording major allocation: %w", err)
			}
			return m, nil
		}
	}
	return 0, ErrMajorsExhausted
}

// ReleaseMajor implements Host.
func (h *SQLiteHost) ReleaseMajor(ctx context.Context, major Major, deviceName string) error {
	res, err := h.db.ExecContext(ctx,
		"DELETE FROM host_majors WHERE major = ? AND device_name = ?",
		major, deviceName,
	)
	if err != nil {
		return fmt.Errorf("releasing major: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrMajorNotAllocated
	}
	return nil
}

// RegisterClass implements Host.
func (h *SQLiteHost) RegisterClass(ctx context.Context, owner, className string) (Class, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var existing int
	err := h.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM host_classes WHERE name = ? AND registered = 1", className,
	).Scan(&existing)
	if err != nil {
		return Class{}, fmt.Errorf("checking class name: %w", err)
	}
	if existing > 0 {
		return Class{}, ErrClassExists
	}

	class := Class{
		ID:    uuid.NewString(),
		Owner: owner,
		Name:  className,
	}
	_, err = h.db.ExecContext(ctx,
		"INSERT INTO host_classes (id, owner, name, registered, created_at) VALUES (?, ?, ?, 1, ?)",
		class.ID, class.Owner, class.Name, now(),
	)
	if err != nil {
		return Class{}, fmt.Errorf("recording class registration: %w", err)
	}
	return class, nil
}

// UnregisterClass implements Host.
func (h *SQLiteHost) UnregisterClass(ctx context.Context, class Class) error {
	res, err := h.db.ExecContext(ctx,
		"UPDATE host_classes SET registered = 0 WHERE id = ?", class.ID,
	)
	if err != nil {
		return fmt.Errorf("unregistering class: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrClassNotFound
	}
	return nil
}

// DestroyClass implements Host.
func (h *SQLiteHost) DestroyClass(ctx context.Context, class Class) error {
	res, err := h.db.ExecContext(ctx,
		"DELETE FROM host_classes WHERE id = ?", class.ID,
	)
	if err != nil {
		return fmt.Errorf("destroying class: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrClassNotFound
	}
	return nil
}

// CreateNode implements Host.
func (h *SQLiteHost) CreateNode(ctx context.Context, class Class, major Major, minor int, deviceName string) (Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var classID string
	err := h.db.QueryRowContext(ctx,
		"SELECT id FROM host_classes WHERE id = ?", class.ID,
	).Scan(&classID)
	if errors.Is(err, sql.ErrNoRows) {
		return Node{}, ErrClassNotFound
	}
	if err != nil {
		return Node{}, fmt.Errorf("checking class: %w", err)
	}

	var existing int
	err = h.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM host_nodes WHERE name = ?", deviceName,
	).Scan(&existing)
	if err != nil {
		return Node{}, fmt.Errorf("checking node name: %w", err)
	}
	if existing > 0 {
		return Node{}, ErrNodeExists
	}

	node := Node{
		ID:    uuid.NewString(),
		Name:  deviceName,
		Major: major,
		Minor: minor,
	}
	_, err = h.db.ExecContext(ctx,
		"INSERT INTO host_nodes (id, name, class_id, major, minor, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		node.ID, node.Name, class.ID, int(node.Major), node.Minor, now(),
	)
	if err != nil {
		return Node{}, fmt.Errorf("recording node creation: %w", err)
	}
	return node, nil
}

// DestroyNode implements Host.
func (h *SQLiteHost) DestroyNode(ctx context.Context, node Node) error {
	res, err := h.db.ExecContext(ctx,
		"DELETE FROM host_nodes WHERE id = ?", node.ID,
	)
	if err != nil {
		return fmt.Errorf("destroying node: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNodeNotFound
	}
	return nil
}

// now returns the current UTC time in RFC 3339 format for timestamps.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
