package sqlstore

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Migrate executes the statements of an SQL script, e.g. scripts/contacts.sql. A statement may
// span several lines and ends with the line that contains a semicolon. Lines starting with "--"
// are skipped. Migrate returns the number of executed statements.
func Migrate(ctx context.Context, sqlDB *sql.DB, script io.Reader) (int, error) {
	db := sqlx.NewDb(sqlDB, "mysql")
	scanner := bufio.NewScanner(script)
	scanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	executed := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			statement := strings.TrimSpace(builder.String())
			builder = strings.Builder{}
			if _, err := db.ExecContext(ctx, statement); err != nil {
				return executed, fmt.Errorf("statement %d: %w", executed+1, err)
			}
			executed++
		}
	}
	if err := scanner.Err(); err != nil {
		return executed, err
	}
	if rest := strings.TrimSpace(builder.String()); rest != "" {
		return executed, fmt.Errorf("statement %d is not terminated by a semicolon", executed+1)
	}
	return executed, nil
}
