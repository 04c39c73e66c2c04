package iocache

import (
	"database/sql"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for snapshot storage.
const (
	snapshotsTable        = "starsview_snapshots"
	parentAggregatesTable = "starsview_parent_aggregates"
	parentYearTotalsTable = "starsview_parent_year_totals"
)

// snapshotTables lists every snapshot table, parent table first.
var snapshotTables = []string{snapshotsTable, parentAggregatesTable, parentYearTotalsTable}

// SnapshotStoreImpl implements the SnapshotStore interface.
type SnapshotStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// NewSnapshotStore opens the database for backend and makes sure the
// snapshot tables exist.
func NewSnapshotStore(backend schema.DatabaseBackend, connStr string) (*SnapshotStoreImpl, error) {
	db, driverName, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createSnapshotTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snapshot tables: %w", err)
	}

	return &SnapshotStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
	}, nil
}

// openDatabase opens a connection pool for backend without verifying it.
func openDatabase(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetSnapshotDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, "sqlite", nil

	case schema.MySQLBackend:
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, "mysql", nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, "pgx", nil

	default:
		return nil, "", fmt.Errorf("unsupported snapshot backend: %s", backend)
	}
}

// createSnapshotTables runs every embedded up migration. Each one is a single
// idempotent CREATE TABLE IF NOT EXISTS statement.
func createSnapshotTables(db *sql.DB) error {
	files, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	if err != nil {
		return err
	}
	slices.Sort(files)
	for _, file := range files {
		query, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if _, err := db.Exec(string(query)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", file, err)
		}
	}
	return nil
}

// quoteTableName quotes a table name for the backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// getPlaceholders returns n comma-separated parameter placeholders for the backend.
func getPlaceholders(backend schema.DatabaseBackend, n int) string {
	parts := make([]string, n)
	for i := range parts {
		if backend == schema.PostgreSQLBackend {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// nullable converts an absent value to SQL NULL.
func nullable(v schema.NullFloat) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

// fromNullable converts a scanned column back to a NullFloat.
func fromNullable(v sql.NullFloat64) schema.NullFloat {
	if !v.Valid {
		return schema.Null
	}
	return schema.Float(v.Float64)
}

// SaveSnapshot writes the snapshot row and all parent rows in one transaction.
// Snapshot ids increase strictly; a zero meta.SnapshotID is assigned from the clock.
func (ss *SnapshotStoreImpl) SaveSnapshot(meta schema.SnapshotRecord, aggregates []schema.ParentAggregate, totals []schema.ParentYearTotal) (int64, error) {
	tx, err := ss.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snapshotID := meta.SnapshotID
	if snapshotID == 0 {
		var lastID int64
		lastQuery := fmt.Sprintf("SELECT COALESCE(MAX(snapshot_id), 0) FROM %s", quoteTableName(snapshotsTable, ss.backend))
		if err := tx.QueryRow(lastQuery).Scan(&lastID); err != nil {
			return 0, fmt.Errorf("failed to get last snapshot id: %w", err)
		}
		snapshotID = max(time.Now().UnixNano(), lastID+1)
	}
	createdAt := meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	snapshotQuery := fmt.Sprintf(`INSERT INTO %s (snapshot_id, created_at, generated_at_utc, source, parent_aggregates, parent_year_totals) VALUES (%s)`,
		quoteTableName(snapshotsTable, ss.backend), getPlaceholders(ss.backend, 6))
	if _, err := tx.Exec(snapshotQuery, snapshotID, createdAt.UTC().Format(time.RFC3339Nano), meta.GeneratedAtUTC, meta.Source,
		len(aggregates), len(totals)); err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	aggQuery := fmt.Sprintf(`
		INSERT INTO %s (snapshot_id, rating_year, parent_organization, measure_key, measure_name, measure_codes,
		                weighted_raw_measure_data, weighted_measure_stars, weighted_star_weight,
		                weighted_calculated_raw_stars_score, members_included, contracts_included)
		VALUES (%s)
	`, quoteTableName(parentAggregatesTable, ss.backend), getPlaceholders(ss.backend, 12))
	aggStmt, err := tx.Prepare(aggQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare parent aggregate insert: %w", err)
	}
	defer func() { _ = aggStmt.Close() }()
	for _, r := range aggregates {
		if _, err := aggStmt.Exec(snapshotID, int(r.RatingYear), r.ParentOrganization, r.MeasureKey, r.MeasureName, r.MeasureCodeObserved,
			nullable(r.WeightedRawMeasureData), nullable(r.WeightedMeasureStars), nullable(r.WeightedStarWeight),
			nullable(r.WeightedCalculatedRawStarsScore), nullable(r.MembersIncluded), nullable(r.ContractsIncluded)); err != nil {
			return 0, fmt.Errorf("failed to insert parent aggregate: %w", err)
		}
	}

	totalQuery := fmt.Sprintf(`
		INSERT INTO %s (snapshot_id, rating_year, parent_organization, weighted_total_raw_stars_score, members_included, contracts_included)
		VALUES (%s)
	`, quoteTableName(parentYearTotalsTable, ss.backend), getPlaceholders(ss.backend, 6))
	totalStmt, err := tx.Prepare(totalQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare parent year total insert: %w", err)
	}
	defer func() { _ = totalStmt.Close() }()
	for _, r := range totals {
		if _, err := totalStmt.Exec(snapshotID, int(r.RatingYear), r.ParentOrganization,
			nullable(r.WeightedTotalRawStarsScore), nullable(r.MembersIncluded), nullable(r.ContractsIncluded)); err != nil {
			return 0, fmt.Errorf("failed to insert parent year total: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snapshotID, nil
}

// ListSnapshots returns snapshot metadata, newest first.
func (ss *SnapshotStoreImpl) ListSnapshots() ([]schema.SnapshotRecord, error) {
	query := fmt.Sprintf(`SELECT snapshot_id, created_at, generated_at_utc, source, parent_aggregates, parent_year_totals
		FROM %s ORDER BY snapshot_id DESC`, quoteTableName(snapshotsTable, ss.backend))
	rows, err := ss.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotRecord
	for rows.Next() {
		var record schema.SnapshotRecord
		var createdAt string
		if err := rows.Scan(&record.SnapshotID, &createdAt, &record.GeneratedAtUTC, &record.Source,
			&record.ParentAggregates, &record.ParentYearTotals); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return results, nil
}

// GetParentAggregates returns the parent aggregates of one snapshot in
// (year, parent, measure) order.
func (ss *SnapshotStoreImpl) GetParentAggregates(snapshotID int64) ([]schema.ParentAggregate, error) {
	query := fmt.Sprintf(`SELECT rating_year, parent_organization, measure_key, measure_name, measure_codes,
		weighted_raw_measure_data, weighted_measure_stars, weighted_star_weight,
		weighted_calculated_raw_stars_score, members_included, contracts_included
		FROM %s WHERE snapshot_id = %s
		ORDER BY rating_year, parent_organization, measure_key`,
		quoteTableName(parentAggregatesTable, ss.backend), getPlaceholders(ss.backend, 1))
	rows, err := ss.db.Query(query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parent aggregates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ParentAggregate
	for rows.Next() {
		var record schema.ParentAggregate
		var year int
		var raw, stars, weight, calculated, members, contracts sql.NullFloat64
		if err := rows.Scan(&year, &record.ParentOrganization, &record.MeasureKey, &record.MeasureName, &record.MeasureCodeObserved,
			&raw, &stars, &weight, &calculated, &members, &contracts); err != nil {
			return nil, fmt.Errorf("failed to scan parent aggregate: %w", err)
		}
		record.RatingYear = schema.Year(year)
		record.WeightedRawMeasureData = fromNullable(raw)
		record.WeightedMeasureStars = fromNullable(stars)
		record.WeightedStarWeight = fromNullable(weight)
		record.WeightedCalculatedRawStarsScore = fromNullable(calculated)
		record.MembersIncluded = fromNullable(members)
		record.ContractsIncluded = fromNullable(contracts)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parent aggregates: %w", err)
	}
	return results, nil
}

// GetParentYearTotals returns the parent year totals of one snapshot in
// (year, parent) order.
func (ss *SnapshotStoreImpl) GetParentYearTotals(snapshotID int64) ([]schema.ParentYearTotal, error) {
	query := fmt.Sprintf(`SELECT rating_year, parent_organization, weighted_total_raw_stars_score, members_included, contracts_included
		FROM %s WHERE snapshot_id = %s
		ORDER BY rating_year, parent_organization`,
		quoteTableName(parentYearTotalsTable, ss.backend), getPlaceholders(ss.backend, 1))
	rows, err := ss.db.Query(query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parent year totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ParentYearTotal
	for rows.Next() {
		var record schema.ParentYearTotal
		var year int
		var score, members, contracts sql.NullFloat64
		if err := rows.Scan(&year, &record.ParentOrganization, &score, &members, &contracts); err != nil {
			return nil, fmt.Errorf("failed to scan parent year total: %w", err)
		}
		record.RatingYear = schema.Year(year)
		record.WeightedTotalRawStarsScore = fromNullable(score)
		record.MembersIncluded = fromNullable(members)
		record.ContractsIncluded = fromNullable(contracts)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parent year totals: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the snapshot store.
func (ss *SnapshotStoreImpl) GetStatus() (schema.SnapshotStatus, error) {
	status := schema.SnapshotStatus{
		Backend:    string(ss.backend),
		Connected:  ss.db != nil,
		TableSizes: make(map[string]int64),
	}

	records, err := ss.ListSnapshots()
	if err != nil {
		return status, err
	}
	status.TotalSnapshots = len(records)
	if len(records) > 0 {
		status.LastSnapshotID = records[0].SnapshotID
		status.LastSnapshotTime = records[0].CreatedAt
		status.OldestSnapshotTime = records[len(records)-1].CreatedAt
	}

	for _, table := range snapshotTables {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, ss.backend))
		var count int64
		if err := ss.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	status.StorageBytes = ss.storageBytes()
	return status, nil
}

// storageBytes estimates the on-disk size of the snapshot tables. It returns
// 0 when the backend cannot report it.
func (ss *SnapshotStoreImpl) storageBytes() int64 {
	var size sql.NullInt64
	switch ss.backend {
	case schema.SQLiteBackend:
		row := ss.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ss.connStr)
		if err != nil || cfg.DBName == "" {
			return 0
		}
		query := `SELECT SUM(data_length + index_length) FROM information_schema.tables
			WHERE table_schema = ? AND table_name IN (?, ?, ?)`
		row := ss.db.QueryRow(query, cfg.DBName, snapshotsTable, parentAggregatesTable, parentYearTotalsTable)
		if err := row.Scan(&size); err != nil {
			return 0
		}
	case schema.PostgreSQLBackend:
		query := "SELECT pg_total_relation_size($1) + pg_total_relation_size($2) + pg_total_relation_size($3)"
		row := ss.db.QueryRow(query, snapshotsTable, parentAggregatesTable, parentYearTotalsTable)
		if err := row.Scan(&size); err != nil {
			return 0
		}
	}
	return size.Int64
}

// Clear removes every snapshot and its parent rows.
func (ss *SnapshotStoreImpl) Clear() error {
	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range slices.Backward(snapshotTables) {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", quoteTableName(table, ss.backend))); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying connection.
func (ss *SnapshotStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}
