package sqlconnect

import (
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// Stock MySQL has no IF NOT EXISTS on CREATE INDEX and reserves GROUPS as
// a keyword, so the schema must stay inside idempotent CREATE TABLE
// statements with the groups table backtick-quoted.
func TestSchemaIsMySQLCompatible(t *testing.T) {
	for i, stmt := range schema {
		trimmed := strings.TrimSpace(stmt)
		if !strings.HasPrefix(trimmed, "CREATE TABLE IF NOT EXISTS") {
			t.Errorf("schema[%d] is not an idempotent CREATE TABLE: %.60s", i, trimmed)
		}
		if strings.Contains(stmt, "CREATE INDEX") {
			t.Errorf("schema[%d] contains a standalone CREATE INDEX", i)
		}
		if strings.Contains(stmt, "REFERENCES groups(") || strings.Contains(stmt, "EXISTS groups ") {
			t.Errorf("schema[%d] references the groups table without backticks", i)
		}
	}
}

func TestRunMigrationsExecutesEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	for _, stmt := range schema {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
