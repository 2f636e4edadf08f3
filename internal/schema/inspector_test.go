package schema

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/steamtestpanel/steam-test-panel/internal/connector"
	"github.com/steamtestpanel/steam-test-panel/pkg/models"
)

func newTestInspector() *Inspector {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests

	db := &connector.DatabaseConnector{
		Host:     "localhost",
		User:     "user",
		Password: "password",
		Database: "panel",
		Port:     "3306",
		Logger:   logger,
	}
	return NewInspector(db, logger)
}

func TestNewInspector(t *testing.T) {
	inspector := newTestInspector()

	if inspector == nil {
		t.Fatal("Expected inspector to be created, got nil")
	}
	if inspector.TableColumns == nil {
		t.Error("Expected inspector.TableColumns to be initialized")
	}
	if inspector.ForeignKeys == nil {
		t.Error("Expected inspector.ForeignKeys to be initialized")
	}
}

func TestInsertionOrderRespectsForeignKeys(t *testing.T) {
	inspector := newTestInspector()

	inspector.Tables = []string{"report_comments", "reports", "users"}
	inspector.ForeignKeys = map[string][]models.ForeignKey{
		"reports": {
			{
				Table:            "reports",
				Column:           "reporter_id",
				ReferencedTable:  "users",
				ReferencedColumn: "id",
			},
		},
		"report_comments": {
			{
				Table:            "report_comments",
				Column:           "report_id",
				ReferencedTable:  "reports",
				ReferencedColumn: "id",
			},
			{
				Table:            "report_comments",
				Column:           "author_id",
				ReferencedTable:  "users",
				ReferencedColumn: "id",
			},
		},
	}

	ordered := inspector.InsertionOrder()

	if len(ordered) != 3 {
		t.Fatalf("Expected 3 tables in the ordered list, got %d", len(ordered))
	}

	position := make(map[string]int)
	for i, table := range ordered {
		position[table] = i
	}

	if position["users"] > position["reports"] {
		t.Error("Expected users to come before reports in the ordered list")
	}
	if position["reports"] > position["report_comments"] {
		t.Error("Expected reports to come before report_comments in the ordered list")
	}
}

func TestInsertionOrderIgnoresSelfReferences(t *testing.T) {
	inspector := newTestInspector()

	inspector.Tables = []string{"reports"}
	inspector.ForeignKeys = map[string][]models.ForeignKey{
		"reports": {
			{
				Table:            "reports",
				Column:           "parent_id",
				ReferencedTable:  "reports",
				ReferencedColumn: "id",
			},
		},
	}

	ordered := inspector.InsertionOrder()

	if len(ordered) != 1 || ordered[0] != "reports" {
		t.Errorf("Expected [reports], got %v", ordered)
	}
}

func TestInsertionOrderFallsBackOnCycle(t *testing.T) {
	inspector := newTestInspector()

	inspector.Tables = []string{"employees", "departments"}
	inspector.ForeignKeys = map[string][]models.ForeignKey{
		"employees": {
			{
				Table:            "employees",
				Column:           "department_id",
				ReferencedTable:  "departments",
				ReferencedColumn: "id",
			},
		},
		"departments": {
			{
				Table:            "departments",
				Column:           "manager_id",
				ReferencedTable:  "employees",
				ReferencedColumn: "id",
			},
		},
	}

	ordered := inspector.InsertionOrder()

	if len(ordered) != 2 {
		t.Fatalf("Expected 2 tables in the ordered list, got %d", len(ordered))
	}
	if ordered[0] != "departments" || ordered[1] != "employees" {
		t.Errorf("Expected alphabetical fallback order, got %v", ordered)
	}
}

func TestAutoIncrementColumn(t *testing.T) {
	inspector := newTestInspector()

	inspector.TableColumns = map[string][]models.Column{
		"reports": {
			{Name: "id", DataType: "bigint", ColumnKey: "PRI", Extra: "auto_increment"},
			{Name: "title", DataType: "varchar"},
		},
		"site_settings": {
			{Name: "name", DataType: "varchar", ColumnKey: "PRI"},
			{Name: "value", DataType: "text"},
		},
	}

	if got := inspector.AutoIncrementColumn("reports"); got != "id" {
		t.Errorf("Expected auto increment column id, got %q", got)
	}
	if got := inspector.AutoIncrementColumn("site_settings"); got != "" {
		t.Errorf("Expected no auto increment column, got %q", got)
	}
}
