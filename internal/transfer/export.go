package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/steamtestpanel/steam-test-panel/internal/connector"
)

// IDList holds the selected identifiers of one export category. Clients send
// them as JSON strings or numbers interchangeably, so both are accepted.
type IDList []string

// UnmarshalJSON accepts a JSON array of strings and/or numbers
func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(IDList, 0, len(raw))
	for _, v := range raw {
		switch id := v.(type) {
		case string:
			out = append(out, id)
		case float64:
			if id != math.Trunc(id) {
				return fmt.Errorf("non-integral identifier %v in selection", v)
			}
			out = append(out, strconv.FormatInt(int64(id), 10))
		default:
			return fmt.Errorf("unsupported identifier type %T in selection", v)
		}
	}

	*l = out
	return nil
}

// Selection maps export category keys to the identifiers chosen by the user.
// Unknown keys are ignored; categories with empty lists are skipped.
type Selection map[string]IDList

// tableFilter describes one table pulled into an export: rows are matched by
// an IN list against FilterColumn. StringKeys selects string quoting for the
// list values instead of integer formatting.
type tableFilter struct {
	Table        string
	FilterColumn string
	StringKeys   bool
}

// Category identifies one of the fixed export categories
type Category int

const (
	CategoryReports Category = iota
	CategoryUsers
	CategoryClientVersions
	CategoryTests
	CategoryTemplates
	CategoryTags
	CategoryRetests
)

// Key returns the category's wire name as used in selection JSON
func (c Category) Key() string {
	switch c {
	case CategoryReports:
		return "reports"
	case CategoryUsers:
		return "users"
	case CategoryClientVersions:
		return "client_versions"
	case CategoryTests:
		return "tests"
	case CategoryTemplates:
		return "templates"
	case CategoryTags:
		return "tags"
	case CategoryRetests:
		return "retests"
	}
	return ""
}

// tables returns the table-dependency list for the category. The retests
// category partitions its tagged identifiers across two tables and is
// handled separately in Export.
func (c Category) tables() []tableFilter {
	switch c {
	case CategoryReports:
		return []tableFilter{
			{Table: "reports", FilterColumn: "id"},
			{Table: "test_results", FilterColumn: "report_id"},
			{Table: "report_revisions", FilterColumn: "report_id"},
			{Table: "report_logs", FilterColumn: "report_id"},
			{Table: "report_comments", FilterColumn: "report_id"},
			{Table: "report_tag_assignments", FilterColumn: "report_id"},
		}
	case CategoryUsers:
		return []tableFilter{
			{Table: "users", FilterColumn: "id"},
		}
	case CategoryClientVersions:
		return []tableFilter{
			{Table: "client_versions", FilterColumn: "id"},
			{Table: "version_notifications", FilterColumn: "version_id"},
		}
	case CategoryTests:
		return []tableFilter{
			{Table: "test_results", FilterColumn: "test_key", StringKeys: true},
		}
	case CategoryTemplates:
		return []tableFilter{
			{Table: "test_templates", FilterColumn: "id"},
		}
	case CategoryTags:
		return []tableFilter{
			{Table: "report_tags", FilterColumn: "id"},
			{Table: "report_tag_assignments", FilterColumn: "tag_id"},
		}
	case CategoryRetests:
		return nil
	}
	return nil
}

// allCategories fixes the emission order of the export script
var allCategories = []Category{
	CategoryReports,
	CategoryUsers,
	CategoryClientVersions,
	CategoryTests,
	CategoryTemplates,
	CategoryTags,
	CategoryRetests,
}

// ExportStats summarizes one generated export script
type ExportStats struct {
	Categories int
	Tables     int
	Rows       int
}

// Exporter generates selective SQL exports of panel data
type Exporter struct {
	DB     *connector.DatabaseConnector
	Logger *logrus.Logger
}

// NewExporter creates a new exporter
func NewExporter(db *connector.DatabaseConnector, logger *logrus.Logger) *Exporter {
	return &Exporter{DB: db, Logger: logger}
}

// Export writes a self-contained SQL script covering the selected entities
// and their dependent rows. A query failure on one table is recorded as an
// inline comment and does not abort the export.
func (e *Exporter) Export(w io.Writer, sel Selection) (*ExportStats, error) {
	stats := &ExportStats{}

	var chosen []Category
	for _, cat := range allCategories {
		if len(sel[cat.Key()]) > 0 {
			chosen = append(chosen, cat)
		}
	}

	var names []string
	for _, cat := range chosen {
		names = append(names, cat.Key())
	}

	if _, err := fmt.Fprintf(w, "-- Steam Test Panel export\n-- Generated: %s\n-- Categories: %s\n\n",
		time.Now().Format("2006-01-02 15:04:05"), strings.Join(names, ", ")); err != nil {
		return stats, err
	}
	if _, err := fmt.Fprint(w, "SET FOREIGN_KEY_CHECKS=0;\n"); err != nil {
		return stats, err
	}

	for _, cat := range chosen {
		ids := sel[cat.Key()]
		stats.Categories++

		if cat == CategoryRetests {
			retestIDs, fixedIDs := partitionRetestIDs(ids)
			if len(retestIDs) > 0 {
				e.exportTable(w, tableFilter{Table: "retest_requests", FilterColumn: "id"}, retestIDs, stats)
			}
			if len(fixedIDs) > 0 {
				e.exportTable(w, tableFilter{Table: "fixed_tests", FilterColumn: "id"}, fixedIDs, stats)
			}
			continue
		}

		for _, tf := range cat.tables() {
			e.exportTable(w, tf, ids, stats)
		}
	}

	if _, err := fmt.Fprint(w, "\nSET FOREIGN_KEY_CHECKS=1;\n"); err != nil {
		return stats, err
	}

	return stats, nil
}

// exportTable emits one REPLACE INTO statement per matching row
func (e *Exporter) exportTable(w io.Writer, tf tableFilter, ids IDList, stats *ExportStats) {
	inList := buildInList(ids, tf.StringKeys)
	if inList == "" {
		return
	}

	query := fmt.Sprintf("SELECT * FROM `%s` WHERE `%s` IN (%s)", tf.Table, tf.FilterColumn, inList)
	columns, rows, err := e.DB.ExecuteQueryOrdered(query)
	if err != nil {
		e.Logger.Warningf("Export query failed for table %s: %v", tf.Table, err)
		fmt.Fprintf(w, "\n-- ERROR exporting table %s: %v\n", tf.Table, err)
		return
	}

	stats.Tables++
	fmt.Fprintf(w, "\n--\n-- %s (%d rows)\n--\n", tf.Table, len(rows))
	if len(rows) == 0 {
		return
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = "`" + col + "`"
	}
	columnList := strings.Join(quoted, ", ")

	for _, row := range rows {
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = renderValue(v)
		}
		fmt.Fprintf(w, "REPLACE INTO `%s` (%s) VALUES (%s);\n", tf.Table, columnList, strings.Join(values, ", "))
		stats.Rows++
	}
}

// partitionRetestIDs splits tagged retest identifiers (retest_<id> and
// fixed_<id>) into the integer ID sets of their two underlying tables.
// Entries that carry no known tag or a non-numeric ID are dropped.
func partitionRetestIDs(ids IDList) (retestIDs, fixedIDs IDList) {
	for _, id := range ids {
		switch {
		case strings.HasPrefix(id, "retest_"):
			if n := strings.TrimPrefix(id, "retest_"); isInteger(n) {
				retestIDs = append(retestIDs, n)
			}
		case strings.HasPrefix(id, "fixed_"):
			if n := strings.TrimPrefix(id, "fixed_"); isInteger(n) {
				fixedIDs = append(fixedIDs, n)
			}
		}
	}
	return retestIDs, fixedIDs
}

// buildInList renders the selection IDs as a SQL IN list. Integer lists drop
// non-numeric entries; string lists quote every entry.
func buildInList(ids IDList, stringKeys bool) string {
	var parts []string
	for _, id := range ids {
		if stringKeys {
			parts = append(parts, quoteString(id))
			continue
		}
		if isInteger(id) {
			parts = append(parts, id)
		}
	}
	return strings.Join(parts, ", ")
}

func isInteger(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// renderValue renders one column value as a SQL literal
func renderValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return "1"
		}
		return "0"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return "'" + val.Format("2006-01-02 15:04:05") + "'"
	case string:
		return quoteString(val)
	default:
		return quoteString(fmt.Sprintf("%v", val))
	}
}

// quoteString quotes and escapes a string literal the way the MySQL client
// library does
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case 0x1a:
			b.WriteString(`\Z`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
