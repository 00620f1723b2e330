package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"rescache/internal/cache"
	"rescache/internal/database/migrations"
	"rescache/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// SchemaVersion is the schema compatibility gate stored in
	// version_information. A database created with a different version is
	// reported as outdated; there is no automatic migration across it.
	SchemaVersion = "0.0.1"

	// CacheFilename is the name of the database file inside the cache directory.
	CacheFilename = "resourcecache.sqlite"
)

// ErrSchemaOutdated is returned by Initialize when the persisted schema
// version does not match SchemaVersion.
var ErrSchemaOutdated = errors.New("database schema is outdated")

// CacheDB implements the cache.Database interface using SQLite.
type CacheDB struct {
	db   *sqlx.DB
	path string
}

// NewCacheDB creates a new SQLite-backed cache database connection.
// path can be a file path or ":memory:" for an in-memory database.
func NewCacheDB(path string) (*CacheDB, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &CacheDB{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tools and tests that need a properly configured
// connection. path can be a file path or ":memory:".
func OpenConnection(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Initialize brings the database to a usable state: it validates the
// version_information record, applies pending schema migrations, fills the
// lookup tables, and writes the version record on first creation.
//
// Initializing an already-current database performs no mutation and
// returns nil. A schema version mismatch returns ErrSchemaOutdated.
func (c *CacheDB) Initialize(resourceTypes []string, creatorVersion string) error {
	info, err := c.VersionInformation()
	if err != nil {
		return fmt.Errorf("reading version information: %w", err)
	}

	if info != nil {
		if info.SchemaVersion != SchemaVersion {
			return fmt.Errorf("%w: database has %q, expected %q (created by version %s at %s)",
				ErrSchemaOutdated, info.SchemaVersion, SchemaVersion, info.CreatorVersion,
				time.Unix(info.CreationDate, 0).UTC().Format(time.RFC3339))
		}
		if migrations.CheckDBMigrationStatus(c.db.DB) == nil {
			// All tables present and up to date: nothing to do.
			return nil
		}
	}

	if err := migrations.MigrateUp(c.db.DB); err != nil {
		return fmt.Errorf("applying schema migrations: %w", err)
	}

	if err := c.fillLookupTables(resourceTypes); err != nil {
		return err
	}

	if info == nil {
		if err := c.writeVersionInformation(creatorVersion); err != nil {
			return err
		}
	}

	return nil
}

// fillLookupTables clears and repopulates origin_types and resource_types.
// Origin type rows get explicit ids equal to the model.OriginType ordinal
// so the storages table can reference them without a name lookup.
func (c *CacheDB) fillLookupTables(resourceTypes []string) error {
	tx, err := c.db.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM origin_types"); err != nil {
		return fmt.Errorf("clearing origin_types: %w", err)
	}
	for i, name := range model.OriginTypeNames() {
		if _, err := tx.Exec("INSERT INTO origin_types (id, name) VALUES (?, ?)", i, name); err != nil {
			return fmt.Errorf("filling origin_types with %q: %w", name, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM resource_types"); err != nil {
		return fmt.Errorf("clearing resource_types: %w", err)
	}
	for _, name := range resourceTypes {
		if _, err := tx.Exec("INSERT INTO resource_types (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("filling resource_types with %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing lookup tables: %w", err)
	}
	return nil
}

func (c *CacheDB) writeVersionInformation(creatorVersion string) error {
	_, err := c.db.Exec(
		"INSERT INTO version_information (schema_version, creator_version, creation_date) VALUES (?, ?, ?)",
		SchemaVersion, creatorVersion, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("writing version information: %w", err)
	}
	return nil
}

// VersionInformation returns the version record, or nil if the table does
// not exist yet or holds no row.
func (c *CacheDB) VersionInformation() (*model.VersionInformation, error) {
	exists, err := c.tableExists("version_information")
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	var info model.VersionInformation
	err = c.db.Get(&info,
		"SELECT id, schema_version, creator_version, creation_date FROM version_information ORDER BY id LIMIT 1")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying version information: %w", err)
	}
	return &info, nil
}

func (c *CacheDB) tableExists(name string) (bool, error) {
	var count int
	err := c.db.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name)
	if err != nil {
		return false, fmt.Errorf("checking for table %s: %w", name, err)
	}
	return count > 0, nil
}

// Storage registry operations

func (c *CacheDB) FindStorageByLocation(location string) (*model.Storage, error) {
	var st model.Storage
	err := c.db.Get(&st,
		"SELECT id, origin_type_id, location, timestamp, pre_installed, active FROM storages WHERE location = ?",
		location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding storage by location: %w", err)
	}
	return &st, nil
}

func (c *CacheDB) InsertStorage(origin model.OriginType, location string, timestamp int64, preInstalled bool) (*model.Storage, error) {
	res, err := c.db.Exec(
		"INSERT INTO storages (origin_type_id, location, timestamp, pre_installed, active) VALUES (?, ?, ?, ?, 1)",
		int64(origin), location, timestamp, preInstalled)
	if err != nil {
		return nil, fmt.Errorf("inserting storage: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading storage id: %w", err)
	}

	return &model.Storage{
		ID:           id,
		OriginTypeID: int64(origin),
		Location:     location,
		Timestamp:    timestamp,
		PreInstalled: preInstalled,
		Active:       true,
	}, nil
}

// DeleteStorageByLocation removes a storage row outright, along with its
// version rows and every resource whose versions all lived in it. Children
// go before parents; no cascading delete is relied upon. Deleting an
// unknown location is a no-op.
func (c *CacheDB) DeleteStorageByLocation(location string) error {
	tx, err := c.db.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var storageID int64
	err = tx.Get(&storageID, "SELECT id FROM storages WHERE location = ?", location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil // Nothing to delete
		}
		return fmt.Errorf("finding storage to delete: %w", err)
	}

	// Resources reachable only through this storage's versions.
	var orphaned []int64
	err = tx.Select(&orphaned,
		`SELECT resource_id FROM versioned_resources WHERE storage_id = ?
		 EXCEPT
		 SELECT resource_id FROM versioned_resources WHERE storage_id != ?`,
		storageID, storageID)
	if err != nil {
		return fmt.Errorf("finding orphaned resources: %w", err)
	}

	if len(orphaned) > 0 {
		query, args, err := sqlx.In("DELETE FROM resource_tags WHERE resource_id IN (?)", orphaned)
		if err != nil {
			return fmt.Errorf("building tag cleanup query: %w", err)
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("deleting resource tags: %w", err)
		}
	}

	if _, err := tx.Exec("DELETE FROM versioned_resources WHERE storage_id = ?", storageID); err != nil {
		return fmt.Errorf("deleting versioned resources: %w", err)
	}

	if len(orphaned) > 0 {
		query, args, err := sqlx.In("DELETE FROM resources WHERE id IN (?)", orphaned)
		if err != nil {
			return fmt.Errorf("building resource cleanup query: %w", err)
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("deleting resources: %w", err)
		}
	}

	if _, err := tx.Exec("DELETE FROM storages WHERE id = ?", storageID); err != nil {
		return fmt.Errorf("deleting storage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing storage deletion: %w", err)
	}
	return nil
}

func (c *CacheDB) SetStorageActive(location string, active bool) error {
	res, err := c.db.Exec("UPDATE storages SET active = ? WHERE location = ?", active, location)
	if err != nil {
		return fmt.Errorf("updating storage active flag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("storage not found: %s", location)
	}
	return nil
}

func (c *CacheDB) ListStorages() ([]*model.Storage, error) {
	var rows []model.Storage
	err := c.db.Select(&rows,
		"SELECT id, origin_type_id, location, timestamp, pre_installed, active FROM storages ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing storages: %w", err)
	}

	result := make([]*model.Storage, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}

// Resource index operations

func (c *CacheDB) ResourceIDForResource(filename, resourceType string) (int64, error) {
	var id int64
	err := c.db.Get(&id,
		`SELECT resources.id
		 FROM   resources, resource_types
		 WHERE  resources.resource_type_id = resource_types.id
		 AND    resources.filename = ?
		 AND    resource_types.name = ?`,
		filename, resourceType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cache.ResourceNotFound, nil
		}
		return cache.ResourceNotFound, fmt.Errorf("finding resource id: %w", err)
	}
	return id, nil
}

func (c *CacheDB) LatestVersion(resourceID int64) (*model.VersionedResource, error) {
	var v model.VersionedResource
	err := c.db.Get(&v,
		`SELECT id, resource_id, storage_id, version, location, timestamp, deleted, checksum
		 FROM   versioned_resources
		 WHERE  resource_id = ?
		 AND    version = (SELECT MAX(version)
		                   FROM   versioned_resources
		                   WHERE  resource_id = ?)`,
		resourceID, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No version rows
		}
		return nil, fmt.Errorf("finding latest version: %w", err)
	}
	return &v, nil
}

func (c *CacheDB) InsertResourceWithVersion(resourceType, storageLocation string, rec cache.ResourceRecord) (int64, error) {
	tx, err := c.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO resources (resource_type_id, name, filename, tooltip, thumbnail, status)
		 VALUES ((SELECT id FROM resource_types WHERE name = ?), ?, ?, ?, ?, 1)`,
		resourceType, rec.Name, rec.Filename, rec.Tooltip, rec.Thumbnail)
	if err != nil {
		return 0, fmt.Errorf("inserting resource: %w", err)
	}

	resourceID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading resource id: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO versioned_resources (resource_id, storage_id, version, location, timestamp, deleted, checksum)
		 VALUES (?, (SELECT id FROM storages WHERE location = ?), 1, ?, ?, 0, ?)`,
		resourceID, storageLocation, rec.Location, rec.Timestamp, rec.Checksum)
	if err != nil {
		return 0, fmt.Errorf("inserting first version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing resource insert: %w", err)
	}
	return resourceID, nil
}

func (c *CacheDB) AppendResourceVersion(resourceID int64, storageLocation string, rec cache.ResourceRecord) error {
	tx, err := c.db.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO versioned_resources (resource_id, storage_id, version, location, timestamp, deleted, checksum)
		 VALUES (?,
		         (SELECT id FROM storages WHERE location = ?),
		         (SELECT MAX(version) + 1 FROM versioned_resources WHERE resource_id = ?),
		         ?, ?, 0, ?)`,
		resourceID, storageLocation, resourceID, rec.Location, rec.Timestamp, rec.Checksum)
	if err != nil {
		return fmt.Errorf("inserting version: %w", err)
	}

	_, err = tx.Exec(
		"UPDATE resources SET name = ?, filename = ?, tooltip = ?, thumbnail = ? WHERE id = ?",
		rec.Name, rec.Filename, rec.Tooltip, rec.Thumbnail, resourceID)
	if err != nil {
		return fmt.Errorf("updating resource metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing version append: %w", err)
	}
	return nil
}

func (c *CacheDB) VersionsForResource(resourceID int64) ([]*model.VersionedResource, error) {
	var rows []model.VersionedResource
	err := c.db.Select(&rows,
		`SELECT id, resource_id, storage_id, version, location, timestamp, deleted, checksum
		 FROM   versioned_resources
		 WHERE  resource_id = ?
		 ORDER BY version DESC`,
		resourceID)
	if err != nil {
		return nil, fmt.Errorf("listing resource versions: %w", err)
	}

	result := make([]*model.VersionedResource, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}

// Tag catalog operations

func (c *CacheDB) FindTagID(url, resourceType string) (int64, error) {
	var id int64
	err := c.db.Get(&id,
		`SELECT tags.id
		 FROM   tags, resource_types
		 WHERE  tags.resource_type_id = resource_types.id
		 AND    tags.url = ?
		 AND    resource_types.name = ?`,
		url, resourceType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cache.ResourceNotFound, nil
		}
		return cache.ResourceNotFound, fmt.Errorf("finding tag id: %w", err)
	}
	return id, nil
}

func (c *CacheDB) InsertTag(url, name, comment, resourceType string) error {
	_, err := c.db.Exec(
		`INSERT INTO tags (url, name, comment, resource_type_id, active)
		 VALUES (?, ?, ?, (SELECT id FROM resource_types WHERE name = ?), 1)`,
		url, name, comment, resourceType)
	if err != nil {
		return fmt.Errorf("inserting tag: %w", err)
	}
	return nil
}

func (c *CacheDB) InsertResourceTag(resourceID, tagID int64) error {
	// OR IGNORE keeps repeated associations from producing duplicate rows.
	_, err := c.db.Exec(
		"INSERT OR IGNORE INTO resource_tags (resource_id, tag_id) VALUES (?, ?)",
		resourceID, tagID)
	if err != nil {
		return fmt.Errorf("inserting resource tag: %w", err)
	}
	return nil
}

func (c *CacheDB) TagsForResourceType(resourceType string) ([]*model.Tag, error) {
	var rows []model.Tag
	err := c.db.Select(&rows,
		`SELECT tags.id, tags.url, tags.name, tags.comment, tags.resource_type_id, tags.active
		 FROM   tags, resource_types
		 WHERE  tags.resource_type_id = resource_types.id
		 AND    resource_types.name = ?
		 ORDER BY tags.id`,
		resourceType)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	result := make([]*model.Tag, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}

// Operations journal

func (c *CacheDB) CreateSyncOperation(operation, parameters string) (int64, error) {
	res, err := c.db.Exec(
		"INSERT INTO sync_operations (started_at, operation, parameters) VALUES (?, ?, ?)",
		time.Now().Unix(), operation, parameters)
	if err != nil {
		return 0, fmt.Errorf("creating sync operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading sync operation id: %w", err)
	}
	return id, nil
}

func (c *CacheDB) FinishSyncOperation(id int64, status string) error {
	_, err := c.db.Exec(
		"UPDATE sync_operations SET finished_at = ?, status = ? WHERE id = ?",
		time.Now().Unix(), status, id)
	if err != nil {
		return fmt.Errorf("finishing sync operation: %w", err)
	}
	return nil
}

func (c *CacheDB) ListSyncOperations(limit int) ([]*model.SyncOperation, error) {
	var rows []model.SyncOperation
	err := c.db.Select(&rows,
		`SELECT id, started_at, finished_at, operation, parameters, status
		 FROM   sync_operations
		 ORDER BY id DESC
		 LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("listing sync operations: %w", err)
	}

	result := make([]*model.SyncOperation, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (c *CacheDB) Path() string {
	return c.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (c *CacheDB) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(c.db.DB)
}

// Close closes the database connection.
func (c *CacheDB) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Compile-time check that CacheDB implements the cache.Database interface
var _ cache.Database = (*CacheDB)(nil)
