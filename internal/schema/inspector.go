package schema

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/steamtestpanel/steam-test-panel/internal/connector"
	"github.com/steamtestpanel/steam-test-panel/pkg/models"
	"github.com/yourbasic/graph"
)

// Inspector reads table, column and foreign key metadata for the panel
// database from information_schema
type Inspector struct {
	DB           *connector.DatabaseConnector
	Tables       []string
	TableColumns map[string][]models.Column
	ForeignKeys  map[string][]models.ForeignKey
	Logger       *logrus.Logger
}

// NewInspector creates a new schema inspector
func NewInspector(db *connector.DatabaseConnector, logger *logrus.Logger) *Inspector {
	return &Inspector{
		DB:           db,
		TableColumns: make(map[string][]models.Column),
		ForeignKeys:  make(map[string][]models.ForeignKey),
		Logger:       logger,
	}
}

// Inspect loads the schema metadata for the connected database
func (in *Inspector) Inspect() error {
	tablesQuery := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	tablesResult, err := in.DB.ExecuteQuery(tablesQuery, in.DB.Database)
	if err != nil {
		in.Logger.Errorf("Error getting tables: %v", err)
		return err
	}

	in.Tables = in.Tables[:0]
	for _, row := range tablesResult {
		in.Tables = append(in.Tables, row["table_name"].(string))
	}

	for _, table := range in.Tables {
		columnsQuery := `
			SELECT
				column_name,
				data_type,
				is_nullable,
				column_key,
				extra
			FROM information_schema.columns
			WHERE table_schema = ?
			AND table_name = ?
			ORDER BY ordinal_position
		`
		columnsResult, err := in.DB.ExecuteQuery(columnsQuery, in.DB.Database, table)
		if err != nil {
			in.Logger.Warningf("Failed to retrieve columns for table %s: %v", table, err)
			continue
		}

		var columns []models.Column
		for _, row := range columnsResult {
			columns = append(columns, models.Column{
				Name:       row["column_name"].(string),
				DataType:   row["data_type"].(string),
				IsNullable: row["is_nullable"].(string) == "YES",
				ColumnKey:  row["column_key"].(string),
				Extra:      row["extra"].(string),
			})
		}
		in.TableColumns[table] = columns
	}

	fkQuery := `
		SELECT
			table_name,
			column_name,
			referenced_table_name,
			referenced_column_name,
			constraint_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
		AND referenced_table_name IS NOT NULL
		ORDER BY table_name, column_name
	`
	fkResult, err := in.DB.ExecuteQuery(fkQuery, in.DB.Database)
	if err != nil {
		in.Logger.Errorf("Error getting foreign keys: %v", err)
		return err
	}

	for _, row := range fkResult {
		tableName := row["table_name"].(string)
		columnName := row["column_name"].(string)

		isNullable := false
		for _, col := range in.TableColumns[tableName] {
			if col.Name == columnName {
				isNullable = col.IsNullable
				break
			}
		}

		in.ForeignKeys[tableName] = append(in.ForeignKeys[tableName], models.ForeignKey{
			Table:            tableName,
			Column:           columnName,
			ReferencedTable:  row["referenced_table_name"].(string),
			ReferencedColumn: row["referenced_column_name"].(string),
			IsNullable:       isNullable,
			ConstraintName:   row["constraint_name"].(string),
		})
	}

	return nil
}

// InsertionOrder returns the tables sorted so that every table appears
// after the tables its foreign keys reference. Self-references are
// ignored; if the graph contains a cycle the alphabetical table order
// is returned instead.
func (in *Inspector) InsertionOrder() []string {
	tableIndex := make(map[string]int, len(in.Tables))
	for i, table := range in.Tables {
		tableIndex[table] = i
	}

	// Edges run referenced table -> referencing table so the
	// topological sort yields parents first.
	g := graph.New(len(in.Tables))
	for table, fks := range in.ForeignKeys {
		src, ok := tableIndex[table]
		if !ok {
			continue
		}
		for _, fk := range fks {
			if fk.ReferencedTable == table {
				continue
			}
			if ref, ok := tableIndex[fk.ReferencedTable]; ok {
				g.Add(ref, src)
			}
		}
	}

	order, ok := graph.TopSort(g)
	if !ok {
		in.Logger.Warningf("Circular foreign key dependencies detected, using alphabetical order")
		ordered := append([]string(nil), in.Tables...)
		sort.Strings(ordered)
		return ordered
	}

	ordered := make([]string, 0, len(order))
	for _, idx := range order {
		ordered = append(ordered, in.Tables[idx])
	}
	return ordered
}

// AutoIncrementColumn returns the auto_increment column of a table,
// or "" when the table has none
func (in *Inspector) AutoIncrementColumn(table string) string {
	for _, col := range in.TableColumns[table] {
		if col.Extra == "auto_increment" {
			return col.Name
		}
	}
	return ""
}
