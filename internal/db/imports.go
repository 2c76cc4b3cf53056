package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ResolveMapDBName returns the db_name with the most recent imported_at
// from public.latest_map_imports for the given map.
func ResolveMapDBName(ctx context.Context, meta *sql.DB, mapName string) (string, error) {
	mapName = strings.TrimSpace(mapName)
	if mapName == "" {
		return "", fmt.Errorf("map name is required")
	}
	// Fully qualified to the public schema (assumes we are connected to the 'postgres' database)
	q := `
SELECT db_name
FROM public.latest_map_imports
WHERE map_name = $1
ORDER BY imported_at DESC
LIMIT 1`
	var dbName sql.NullString
	if err := meta.QueryRowContext(ctx, q, mapName).Scan(&dbName); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no database imported for map %q", mapName)
		}
		return "", err
	}
	if !dbName.Valid || dbName.String == "" {
		return "", fmt.Errorf("empty db_name for map %q", mapName)
	}
	return dbName.String, nil
}

// OpenMap connects to the database holding mapName's latest import. It
// reads the import registry through the cluster's 'postgres' database.
func OpenMap(ctx context.Context, baseDSN, mapName string) (*sql.DB, string, error) {
	rootDSN, err := WithDBName(baseDSN, "postgres")
	if err != nil {
		return nil, "", fmt.Errorf("invalid base DSN: %w", err)
	}
	meta, err := Open(rootDSN)
	if err != nil {
		return nil, "", fmt.Errorf("db open (meta): %w", err)
	}
	defer meta.Close()
	if err := Ping(ctx, meta); err != nil {
		return nil, "", fmt.Errorf("db ping (meta): %w", err)
	}
	name, err := ResolveMapDBName(ctx, meta, mapName)
	if err != nil {
		return nil, "", err
	}
	dsn, err := WithDBName(baseDSN, name)
	if err != nil {
		return nil, "", fmt.Errorf("compose DSN: %w", err)
	}
	sqlDB, err := Open(dsn)
	if err != nil {
		return nil, "", fmt.Errorf("db open (map): %w", err)
	}
	if err := Ping(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, "", fmt.Errorf("db ping (map): %w", err)
	}
	return sqlDB, name, nil
}
