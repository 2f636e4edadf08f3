package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/steamtestpanel/steam-test-panel/internal/connector"
)

// Store provides panel data access on top of the shared connector.
// It is constructed once at process start and passed into every handler;
// there is no global instance.
type Store struct {
	DB     *connector.DatabaseConnector
	Logger *logrus.Logger
}

// New creates a new store
func New(db *connector.DatabaseConnector, logger *logrus.Logger) *Store {
	return &Store{DB: db, Logger: logger}
}

// InitSchema creates the panel tables if they do not exist yet
func (s *Store) InitSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(64) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL,
			role VARCHAR(32) NOT NULL DEFAULT 'tester',
			active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS client_versions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			version VARCHAR(64) NOT NULL,
			branch VARCHAR(64) NOT NULL DEFAULT 'stable',
			released_at DATETIME NOT NULL,
			current TINYINT(1) NOT NULL DEFAULT 0
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS reports (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			reporter_id BIGINT NOT NULL,
			version_id BIGINT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'open',
			summary TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			closed_at DATETIME NULL,
			KEY idx_reports_status (status),
			KEY idx_reports_reporter (reporter_id),
			CONSTRAINT fk_reports_reporter FOREIGN KEY (reporter_id) REFERENCES users (id),
			CONSTRAINT fk_reports_version FOREIGN KEY (version_id) REFERENCES client_versions (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS test_results (
			report_id BIGINT NOT NULL,
			test_key VARCHAR(64) NOT NULL,
			result VARCHAR(32) NOT NULL,
			notes TEXT,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (report_id, test_key),
			CONSTRAINT fk_results_report FOREIGN KEY (report_id) REFERENCES reports (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS report_revisions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			report_id BIGINT NOT NULL,
			editor_id BIGINT NOT NULL,
			field VARCHAR(64) NOT NULL,
			old_value TEXT,
			new_value TEXT,
			created_at DATETIME NOT NULL,
			KEY idx_revisions_report (report_id),
			CONSTRAINT fk_revisions_report FOREIGN KEY (report_id) REFERENCES reports (id),
			CONSTRAINT fk_revisions_editor FOREIGN KEY (editor_id) REFERENCES users (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS report_logs (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			report_id BIGINT NOT NULL,
			actor_id BIGINT NOT NULL,
			action VARCHAR(64) NOT NULL,
			detail TEXT,
			created_at DATETIME NOT NULL,
			KEY idx_logs_report (report_id),
			CONSTRAINT fk_logs_report FOREIGN KEY (report_id) REFERENCES reports (id),
			CONSTRAINT fk_logs_actor FOREIGN KEY (actor_id) REFERENCES users (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS report_comments (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			report_id BIGINT NOT NULL,
			author_id BIGINT NOT NULL,
			body TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			KEY idx_comments_report (report_id),
			CONSTRAINT fk_comments_report FOREIGN KEY (report_id) REFERENCES reports (id),
			CONSTRAINT fk_comments_author FOREIGN KEY (author_id) REFERENCES users (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS test_templates (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			description TEXT,
			body MEDIUMTEXT NOT NULL,
			created_by BIGINT NOT NULL,
			created_at DATETIME NOT NULL,
			CONSTRAINT fk_templates_creator FOREIGN KEY (created_by) REFERENCES users (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS report_tags (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(64) NOT NULL UNIQUE,
			color VARCHAR(16) NOT NULL DEFAULT '#888888'
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS report_tag_assignments (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			report_id BIGINT NOT NULL,
			tag_id BIGINT NOT NULL,
			UNIQUE KEY uq_report_tag (report_id, tag_id),
			CONSTRAINT fk_assignments_report FOREIGN KEY (report_id) REFERENCES reports (id),
			CONSTRAINT fk_assignments_tag FOREIGN KEY (tag_id) REFERENCES report_tags (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS retest_requests (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			report_id BIGINT NOT NULL,
			test_key VARCHAR(64) NOT NULL,
			requested_by BIGINT NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'open',
			created_at DATETIME NOT NULL,
			resolved_at DATETIME NULL,
			KEY idx_retests_status (status),
			CONSTRAINT fk_retests_report FOREIGN KEY (report_id) REFERENCES reports (id),
			CONSTRAINT fk_retests_requester FOREIGN KEY (requested_by) REFERENCES users (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS fixed_tests (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			test_key VARCHAR(64) NOT NULL,
			version_id BIGINT NOT NULL,
			marked_by BIGINT NOT NULL,
			created_at DATETIME NOT NULL,
			CONSTRAINT fk_fixed_version FOREIGN KEY (version_id) REFERENCES client_versions (id),
			CONSTRAINT fk_fixed_marker FOREIGN KEY (marked_by) REFERENCES users (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS invite_codes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			code VARCHAR(64) NOT NULL UNIQUE,
			created_by BIGINT NOT NULL,
			role VARCHAR(32) NOT NULL DEFAULT 'tester',
			used_by BIGINT NULL,
			used_at DATETIME NULL,
			created_at DATETIME NOT NULL,
			CONSTRAINT fk_invites_creator FOREIGN KEY (created_by) REFERENCES users (id),
			CONSTRAINT fk_invites_user FOREIGN KEY (used_by) REFERENCES users (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS version_notifications (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			version_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			seen_at DATETIME NULL,
			created_at DATETIME NOT NULL,
			UNIQUE KEY uq_version_user (version_id, user_id),
			CONSTRAINT fk_notifications_version FOREIGN KEY (version_id) REFERENCES client_versions (id),
			CONSTRAINT fk_notifications_user FOREIGN KEY (user_id) REFERENCES users (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS site_settings (
			name VARCHAR(64) PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range statements {
		if _, err := s.DB.ExecuteStatement(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	s.Logger.Info("Panel schema initialized")
	return nil
}

// Row value helpers. The connector returns rows as maps of driver values:
// integers arrive as int64, text as string, DATETIME as time.Time
// (parseTime=true), NULLs as nil.

func rowString(row map[string]interface{}, col string) string {
	if v, ok := row[col].(string); ok {
		return v
	}
	return ""
}

func rowInt64(row map[string]interface{}, col string) int64 {
	switch v := row[col].(type) {
	case int64:
		return v
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

func rowNullInt64(row map[string]interface{}, col string) *int64 {
	if row[col] == nil {
		return nil
	}
	n := rowInt64(row, col)
	return &n
}

func rowBool(row map[string]interface{}, col string) bool {
	return rowInt64(row, col) != 0
}

func rowTime(row map[string]interface{}, col string) time.Time {
	switch v := row[col].(type) {
	case time.Time:
		return v
	case string:
		t, _ := time.Parse("2006-01-02 15:04:05", v)
		return t
	}
	return time.Time{}
}

func rowNullTime(row map[string]interface{}, col string) *time.Time {
	if row[col] == nil {
		return nil
	}
	t := rowTime(row, col)
	return &t
}
