package editor

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// StateDBSuffix marks the SQLite database VS Code keeps per workspace.
const StateDBSuffix = ".vscdb"

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// readStateValues returns every value of the ItemTable in a state database.
// The database is opened read-only. Values are returned as raw bytes since
// VS Code stores them as BLOBs holding mostly JSON.
func readStateValues(ctx context.Context, path string) ([][]byte, error) {
	uriPath := uriEscaper.Replace(filepath.ToSlash(path))
	if !strings.HasPrefix(uriPath, "/") {
		uriPath = "/" + uriPath
	}
	dsn := "file:" + uriPath + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT value FROM ItemTable")
	if err != nil {
		return nil, fmt.Errorf("failed to query state database %s: %w", path, err)
	}
	defer rows.Close()

	var values [][]byte
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to read state value from %s: %w", path, err)
		}
		values = append(values, value)
	}
	return values, rows.Err()
}
