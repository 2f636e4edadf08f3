package transfer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/steamtestpanel/steam-test-panel/internal/connector"
)

// ImportMode controls whether schema-mutating statements are executed
type ImportMode string

const (
	// ImportModeFull executes every statement, DDL included
	ImportModeFull ImportMode = "full"
	// ImportModeDataOnly skips CREATE/DROP/ALTER/TRUNCATE statements
	ImportModeDataOnly ImportMode = "data_only"
)

// ParseImportMode validates a mode string from a form field
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(s) {
	case ImportModeFull:
		return ImportModeFull, nil
	case ImportModeDataOnly:
		return ImportModeDataOnly, nil
	}
	return "", fmt.Errorf("unknown import mode %q (expected full or data_only)", s)
}

const (
	// maxImportErrors caps the error list surfaced to the caller
	maxImportErrors = 50
	// statementPreviewLen caps the statement excerpt kept per error
	statementPreviewLen = 100
)

// autoIncrementTables lists the tables whose AUTO_INCREMENT counter is
// repaired after an import. test_results (composite key) and site_settings
// (string key) are deliberately absent.
var autoIncrementTables = []string{
	"reports",
	"users",
	"client_versions",
	"test_templates",
	"report_tags",
	"report_tag_assignments",
	"report_revisions",
	"report_logs",
	"report_comments",
	"retest_requests",
	"fixed_tests",
	"invite_codes",
	"version_notifications",
}

// ImportResult summarizes one import run
type ImportResult struct {
	Executed int      `json:"executed"`
	Skipped  int      `json:"skipped"`
	Errored  int      `json:"errored"`
	Errors   []string `json:"errors,omitempty"`
}

// Importer executes uploaded SQL scripts statement by statement.
// The run is deliberately best-effort and non-transactional: imports must
// tolerate partial schema mismatches between panel versions, so a failed
// statement is recorded and the batch continues.
type Importer struct {
	DB     *connector.DatabaseConnector
	Logger *logrus.Logger
}

// NewImporter creates a new importer
func NewImporter(db *connector.DatabaseConnector, logger *logrus.Logger) *Importer {
	return &Importer{DB: db, Logger: logger}
}

// Run splits script into statements and executes them one at a time,
// then repairs the AUTO_INCREMENT counters of the known panel tables.
func (im *Importer) Run(script string, mode ImportMode) *ImportResult {
	result := &ImportResult{}

	for _, stmt := range SplitStatements(script) {
		if mode == ImportModeDataOnly && isSchemaStatement(stmt) {
			result.Skipped++
			continue
		}

		if err := im.DB.ExecuteRaw(stmt); err != nil {
			result.Errored++
			im.Logger.Warningf("Import statement failed: %v", err)
			if len(result.Errors) < maxImportErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", previewStatement(stmt), err))
			}
			continue
		}
		result.Executed++
	}

	im.repairAutoIncrement()

	return result
}

// isSchemaStatement reports whether a statement mutates schema
func isSchemaStatement(stmt string) bool {
	first := strings.ToUpper(firstWord(stmt))
	switch first {
	case "CREATE", "DROP", "ALTER", "TRUNCATE":
		return true
	}
	return false
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r' {
			return s[:i]
		}
	}
	return s
}

// previewStatement truncates a statement for the error list
func previewStatement(stmt string) string {
	if len(stmt) > statementPreviewLen {
		return stmt[:statementPreviewLen] + "..."
	}
	return stmt
}

// repairAutoIncrement raises each known table's next-id counter above the
// highest id the import left behind, so later inserts cannot collide.
// The counter is never lowered. Tables that are missing or fail to answer
// are skipped.
func (im *Importer) repairAutoIncrement() {
	for _, table := range autoIncrementTables {
		rows, err := im.DB.ExecuteQuery(fmt.Sprintf("SELECT MAX(id) AS max_id FROM `%s`", table))
		if err != nil || len(rows) == 0 {
			im.Logger.Debugf("Skipping auto-increment repair for %s: %v", table, err)
			continue
		}

		maxID := toInt64(rows[0]["max_id"])
		if maxID <= 0 {
			continue
		}

		current, err := im.currentAutoIncrement(table)
		if err == nil && current > maxID {
			// Counter is already ahead; never lower it
			continue
		}

		if err := im.DB.ExecuteRaw(fmt.Sprintf("ALTER TABLE `%s` AUTO_INCREMENT = %d", table, maxID+1)); err != nil {
			im.Logger.Debugf("Auto-increment repair failed for %s: %v", table, err)
		}
	}
}

// currentAutoIncrement reads the table's next-id counter from information_schema
func (im *Importer) currentAutoIncrement(table string) (int64, error) {
	rows, err := im.DB.ExecuteQuery(
		"SELECT auto_increment FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
		im.DB.Database, table)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || rows[0]["auto_increment"] == nil {
		return 0, fmt.Errorf("no auto_increment value for table %s", table)
	}
	return toInt64(rows[0]["auto_increment"]), nil
}

// toInt64 converts a driver value to int64, tolerating string counters
func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	case nil:
		return 0
	default:
		n, _ := strconv.ParseInt(fmt.Sprintf("%v", val), 10, 64)
		return n
	}
}
