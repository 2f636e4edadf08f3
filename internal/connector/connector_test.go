package connector

import (
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
)

func TestNewDatabaseConnector(t *testing.T) {
	// Set environment variables for testing
	os.Setenv("MYSQL_HOST", "test-host")
	os.Setenv("MYSQL_USER", "test-user")
	os.Setenv("MYSQL_PASSWORD", "test-password")
	os.Setenv("MYSQL_DATABASE", "test-database")
	os.Setenv("MYSQL_PORT", "3307")
	defer func() {
		os.Unsetenv("MYSQL_HOST")
		os.Unsetenv("MYSQL_USER")
		os.Unsetenv("MYSQL_PASSWORD")
		os.Unsetenv("MYSQL_DATABASE")
		os.Unsetenv("MYSQL_PORT")
	}()

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	// Create a new database connector
	db := NewDatabaseConnector("", "", "", "", "", logger)

	// Check that environment variables were used
	if db.Host != "test-host" {
		t.Errorf("Expected host to be 'test-host', got '%s'", db.Host)
	}
	if db.User != "test-user" {
		t.Errorf("Expected user to be 'test-user', got '%s'", db.User)
	}
	if db.Password != "test-password" {
		t.Errorf("Expected password to be 'test-password', got '%s'", db.Password)
	}
	if db.Database != "test-database" {
		t.Errorf("Expected database to be 'test-database', got '%s'", db.Database)
	}
	if db.Port != "3307" {
		t.Errorf("Expected port to be '3307', got '%s'", db.Port)
	}

	// Test with explicit parameters
	db = NewDatabaseConnector("explicit-host", "explicit-user", "explicit-password", "explicit-database", "3308", logger)

	if db.Host != "explicit-host" {
		t.Errorf("Expected host to be 'explicit-host', got '%s'", db.Host)
	}
	if db.Database != "explicit-database" {
		t.Errorf("Expected database to be 'explicit-database', got '%s'", db.Database)
	}
}

func TestExecuteQueryOrdered(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer mockDB.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	dc := &DatabaseConnector{DB: mockDB, Database: "panel", Logger: logger}

	mock.ExpectQuery("SELECT id, title FROM reports").WillReturnRows(
		sqlmock.NewRows([]string{"id", "title"}).
			AddRow(int64(1), []byte("First report")).
			AddRow(int64(2), nil))

	columns, rows, err := dc.ExecuteQueryOrdered("SELECT id, title FROM reports")
	if err != nil {
		t.Fatalf("ExecuteQueryOrdered returned error: %v", err)
	}

	if len(columns) != 2 || columns[0] != "id" || columns[1] != "title" {
		t.Errorf("Expected columns [id title], got %v", columns)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	// []byte values are converted to string
	if rows[0][1] != "First report" {
		t.Errorf("Expected title 'First report', got %v", rows[0][1])
	}
	// NULL values stay nil
	if rows[1][1] != nil {
		t.Errorf("Expected nil title, got %v", rows[1][1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet sqlmock expectations: %v", err)
	}
}

func TestExecuteQueryBuildsRowMaps(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer mockDB.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	dc := &DatabaseConnector{DB: mockDB, Database: "panel", Logger: logger}

	mock.ExpectQuery("SELECT name, value FROM site_settings").WillReturnRows(
		sqlmock.NewRows([]string{"name", "value"}).
			AddRow([]byte("panel_title"), []byte("Steam Test Panel")))

	results, err := dc.ExecuteQuery("SELECT name, value FROM site_settings")
	if err != nil {
		t.Fatalf("ExecuteQuery returned error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(results))
	}
	if results[0]["name"] != "panel_title" {
		t.Errorf("Expected name 'panel_title', got %v", results[0]["name"])
	}
	if results[0]["value"] != "Steam Test Panel" {
		t.Errorf("Expected value 'Steam Test Panel', got %v", results[0]["value"])
	}
}
