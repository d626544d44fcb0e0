package sqlguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsReadOnlyQueries(t *testing.T) {
	valid := []string{
		"SELECT 1",
		"select * from dc_order_lines limit 10",
		"  WITH held AS (SELECT * FROM dc_order_lines WHERE hold_applied_flag = 1) SELECT COUNT(*) FROM held",
		"SELECT sold_to, SUM(ordered_qty) FROM dc_order_lines GROUP BY sold_to",
		// Denylisted words embedded in identifiers must not trip the word-boundary match.
		"SELECT update_count, dropped_at FROM route_plans",
		"SELECT created_by FROM route_plans",
	}
	for _, sql := range valid {
		assert.NoError(t, Validate(sql), sql)
	}
}

func TestValidateRejectsDeniedStatements(t *testing.T) {
	invalid := map[string]string{
		"DROP TABLE x":                               "DROP",
		"drop table dc_order_lines":                  "DROP",
		"DELETE FROM dc_order_lines":                 "DELETE",
		"TRUNCATE TABLE route_plans":                 "TRUNCATE",
		"INSERT INTO t VALUES (1)":                   "INSERT",
		"UPDATE t SET a = 1":                         "UPDATE",
		"ALTER TABLE t ADD COLUMN a INT":             "ALTER",
		"CREATE TABLE t (a INT)":                     "CREATE",
		"GRANT ALL ON t TO u":                        "GRANT",
		"REVOKE ALL ON t FROM u":                     "REVOKE",
		"SELECT * FROM t; -- comment":                "comment injection",
		"SELECT a FROM t UNION SELECT password FROM users": "UNION",
		// Denylisted keywords are rejected even inside an otherwise-SELECT statement.
		"SELECT 1; DROP TABLE x": "DROP",
	}
	for sql := range invalid {
		err := Validate(sql)
		require.Error(t, err, sql)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, sql)
		assert.NotEmpty(t, verr.Reason)
	}
}

func TestValidateRejectsNonSelectEntry(t *testing.T) {
	for _, sql := range []string{"", "   ", "EXPLAIN SELECT 1", "SHOW TABLES", "PRAGMA table_info(t)"} {
		assert.Error(t, Validate(sql), sql)
	}
}
