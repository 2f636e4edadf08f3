package models

import "time"

// Report represents a submitted test report
type Report struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	ReporterID int64      `json:"reporter_id"`
	VersionID  *int64     `json:"version_id"`
	Status     string     `json:"status"`
	Summary    string     `json:"summary"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ClosedAt   *time.Time `json:"closed_at"`
}

// TestResult represents a single test outcome attached to a report
type TestResult struct {
	ReportID  int64     `json:"report_id"`
	TestKey   string    `json:"test_key"`
	Result    string    `json:"result"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportRevision represents one entry in a report's edit history
type ReportRevision struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"report_id"`
	EditorID  int64     `json:"editor_id"`
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportLog represents an audit log line attached to a report
type ReportLog struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"report_id"`
	ActorID   int64     `json:"actor_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportComment represents a comment on a report
type ReportComment struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"report_id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// User represents a panel user account
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientVersion represents a tracked client build
type ClientVersion struct {
	ID         int64     `json:"id"`
	Version    string    `json:"version"`
	Branch     string    `json:"branch"`
	ReleasedAt time.Time `json:"released_at"`
	Current    bool      `json:"current"`
}

// VersionNotification represents a per-user notification about a new version
type VersionNotification struct {
	ID        int64      `json:"id"`
	VersionID int64      `json:"version_id"`
	UserID    int64      `json:"user_id"`
	SeenAt    *time.Time `json:"seen_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// TestTemplate represents a reusable test checklist template
type TestTemplate struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Body        string    `json:"body"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportTag represents a tag that can be assigned to reports
type ReportTag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ReportTagAssignment links a tag to a report
type ReportTagAssignment struct {
	ID       int64 `json:"id"`
	ReportID int64 `json:"report_id"`
	TagID    int64 `json:"tag_id"`
}

// RetestRequest represents a request to re-run a test against a newer build
type RetestRequest struct {
	ID          int64      `json:"id"`
	ReportID    int64      `json:"report_id"`
	TestKey     string     `json:"test_key"`
	RequestedBy int64      `json:"requested_by"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

// FixedTest represents a test marked as fixed in a given client version
type FixedTest struct {
	ID        int64     `json:"id"`
	TestKey   string    `json:"test_key"`
	VersionID int64     `json:"version_id"`
	MarkedBy  int64     `json:"marked_by"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteCode represents a single-use registration invite
type InviteCode struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	CreatedBy int64      `json:"created_by"`
	Role      string     `json:"role"`
	UsedBy    *int64     `json:"used_by"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// SiteSetting represents a single named site configuration value
type SiteSetting struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Column represents a table column as described by information_schema
type Column struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	IsNullable bool   `json:"is_nullable"`
	ColumnKey  string `json:"column_key"`
	Extra      string `json:"extra"`
}

// ForeignKey represents a foreign key relationship between two tables
type ForeignKey struct {
	Table            string `json:"table"`
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
	IsNullable       bool   `json:"is_nullable"`
	ConstraintName   string `json:"constraint_name"`
}
