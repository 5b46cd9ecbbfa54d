// Package geopackage provides the SpatiaLite-based GeoPackage repository.
package geopackage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/jobrunner/goode/internal/domain"
)

// Ensure sqlite3 driver is registered with extension support.
func init() {
	sql.Register("sqlite3_with_extensions", &sqlite3.SQLiteDriver{
		Extensions: getSpatiaLiteLibraryPaths(),
	})
}

// getSpatiaLiteLibraryPaths returns a list of paths to try for loading SpatiaLite.
// The order is important: environment variable first, then platform-specific paths.
func getSpatiaLiteLibraryPaths() []string {
	var paths []string

	// First, check environment variable (set by Nix shell or Docker)
	// The env var should point to the exact library path
	if envPath := os.Getenv("SPATIALITE_LIBRARY_PATH"); envPath != "" {
		paths = append(paths, envPath)
		return paths
	}

	// Fallback: Platform-specific paths
	// Order matters - more specific paths first, then generic names
	paths = append(paths,
		// Alpine Linux (Docker containers)
		"/usr/lib/mod_spatialite.so",
		"/usr/lib/mod_spatialite.so.8",

		// Debian/Ubuntu amd64
		"/usr/lib/x86_64-linux-gnu/mod_spatialite.so",
		"/usr/lib/x86_64-linux-gnu/mod_spatialite.so.8",

		// Debian/Ubuntu arm64
		"/usr/lib/aarch64-linux-gnu/mod_spatialite.so",
		"/usr/lib/aarch64-linux-gnu/mod_spatialite.so.8",

		// macOS Homebrew (Intel)
		"/usr/local/lib/mod_spatialite.dylib",

		// macOS Homebrew (Apple Silicon)
		"/opt/homebrew/lib/mod_spatialite.dylib",

		// Generic names (let the system find them via LD_LIBRARY_PATH)
		"mod_spatialite.so",    // Linux
		"mod_spatialite",       // System default
		"mod_spatialite.dylib", // macOS
	)

	return paths
}

// Repository implements the DatasetRepository port using SpatiaLite.
type Repository struct {
	mu          sync.RWMutex
	connections map[string]*sql.DB
	datasets    map[string]*domain.Dataset
}

// NewRepository creates a new GeoPackage repository.
func NewRepository() *Repository {
	return &Repository{
		connections: make(map[string]*sql.DB),
		datasets:    make(map[string]*domain.Dataset),
	}
}

// Open opens a GeoPackage file and returns its metadata.
func (r *Repository) Open(ctx context.Context, path string) (*domain.Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Derive dataset ID from filename
	datasetID := DeriveDatasetID(path)

	// Check if already open
	if ds, ok := r.datasets[datasetID]; ok {
		return ds, nil
	}

	db, err := r.openDB(ctx, path)
	if err != nil {
		return nil, &domain.StorageError{
			Operation: "open",
			Key:       path,
			Err:       err,
		}
	}

	// Load SpatiaLite extension
	if err := r.loadSpatiaLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("loading SpatiaLite: %w", err)
	}

	// Read GeoPackage metadata
	ds, err := r.readDatasetMetadata(ctx, db, datasetID, path)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	// Store connection and dataset
	r.connections[datasetID] = db
	r.datasets[datasetID] = ds

	return ds, nil
}

// Close closes a dataset connection.
func (r *Repository) Close(_ context.Context, datasetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db, ok := r.connections[datasetID]
	if !ok {
		return nil
	}

	if err := db.Close(); err != nil {
		return err
	}

	delete(r.connections, datasetID)
	delete(r.datasets, datasetID)
	return nil
}

// GetLayers returns all layers in a dataset.
func (r *Repository) GetLayers(_ context.Context, datasetID string) ([]domain.Layer, error) {
	r.mu.RLock()
	ds, ok := r.datasets[datasetID]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrDatasetNotFound
	}

	return ds.Layers, nil
}

// ReadPoints streams the point features of a layer to the callback.
func (r *Repository) ReadPoints(ctx context.Context, datasetID, layerName string, fn func(domain.Feature) error) error {
	r.mu.RLock()
	db, ok := r.connections[datasetID]
	ds := r.datasets[datasetID]
	r.mu.RUnlock()

	if !ok {
		return domain.ErrDatasetNotFound
	}

	layer, found := ds.GetLayer(layerName)
	if !found {
		return domain.ErrLayerNotFound
	}
	if !layer.IsPointLayer() {
		return domain.ErrUnsupportedLayer
	}

	// GeoPackage stores GPKG binary geometries; CastAutomagic converts them
	// to SpatiaLite format so AsText can render WKT.
	query := fmt.Sprintf(`
		SELECT t.fid, t.*, AsText(CastAutomagic(t."%s"))
		FROM "%s" t
		WHERE t."%s" IS NOT NULL
	`, layer.GeometryColumn, layerName, layer.GeometryColumn) //#nosec G201 -- table/column names from trusted database source

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return &domain.ReprojectError{
			DatasetID: datasetID,
			Layer:     layerName,
			Err:       err,
		}
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	for rows.Next() {
		feature, err := r.scanFeature(rows, columns, layerName, layer.GeometryColumn)
		if err != nil {
			return err
		}
		if err := fn(feature); err != nil {
			return err
		}
	}

	return rows.Err()
}

// openDB opens the SQLite database read-only.
func (r *Repository) openDB(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&cache=shared", path)
	db, err := sql.Open("sqlite3_with_extensions", dsn)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// loadSpatiaLite verifies that SpatiaLite extension is loaded.
// The extension is loaded automatically by the sqlite3_with_extensions driver.
func (r *Repository) loadSpatiaLite(ctx context.Context, db *sql.DB) error {
	// Verify SpatiaLite is loaded by checking its version
	var version string
	err := db.QueryRowContext(ctx, "SELECT spatialite_version()").Scan(&version)
	if err != nil {
		return fmt.Errorf("SpatiaLite extension not available: %w", err)
	}
	return nil
}

// readDatasetMetadata reads metadata from a GeoPackage.
func (r *Repository) readDatasetMetadata(ctx context.Context, db *sql.DB, datasetID, path string) (*domain.Dataset, error) {
	ds := &domain.Dataset{
		ID:   datasetID,
		Name: datasetID,
		Path: path,
	}

	if info, err := os.Stat(path); err == nil {
		ds.Size = info.Size()
	}

	// Read layers from gpkg_contents
	layers, err := r.readLayers(ctx, db)
	if err != nil {
		return nil, err
	}
	ds.Layers = layers

	// Try to read metadata from gpkg_metadata if available
	_ = r.readMetadata(ctx, db, ds)

	return ds, nil
}

// readLayers reads layer information from gpkg_contents.
func (r *Repository) readLayers(ctx context.Context, db *sql.DB) ([]domain.Layer, error) {
	query := `
		SELECT
			c.table_name,
			COALESCE(c.description, ''),
			g.column_name,
			g.geometry_type_name,
			g.srs_id,
			COALESCE(c.min_x, 0), COALESCE(c.min_y, 0),
			COALESCE(c.max_x, 0), COALESCE(c.max_y, 0)
		FROM gpkg_contents c
		JOIN gpkg_geometry_columns g ON c.table_name = g.table_name
		WHERE c.data_type = 'features'
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading layers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var layers []domain.Layer
	for rows.Next() {
		var l domain.Layer
		var minX, minY, maxX, maxY float64

		err := rows.Scan(
			&l.Name, &l.Description, &l.GeometryColumn,
			&l.GeometryType, &l.SRID,
			&minX, &minY, &maxX, &maxY,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning layer: %w", err)
		}

		if minX != 0 || minY != 0 || maxX != 0 || maxY != 0 {
			ext := domain.NewExtent(minX, minY, maxX, maxY)
			l.Extent = &ext
		}

		// Count features
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", l.Name) //#nosec G201 -- table name from trusted database source
		var count int64
		if err := db.QueryRowContext(ctx, countQuery).Scan(&count); err == nil {
			l.FeatureCount = count
		}

		layers = append(layers, l)
	}

	return layers, rows.Err()
}

// readMetadata reads optional metadata from gpkg_metadata.
func (r *Repository) readMetadata(ctx context.Context, db *sql.DB, ds *domain.Dataset) error {
	// Check if metadata table exists
	var exists int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='gpkg_metadata'",
	).Scan(&exists)
	if err != nil || exists == 0 {
		return nil //nolint:nilerr // intentionally returning nil for optional metadata
	}

	// Read first metadata entry
	query := `SELECT metadata FROM gpkg_metadata LIMIT 1`
	var metadata string
	if err := db.QueryRowContext(ctx, query).Scan(&metadata); err != nil {
		return err
	}

	// Parse metadata (simplified - would need proper XML parsing for full support)
	ds.Description = metadata
	return nil
}

// scanFeature scans a row into a Feature.
func (r *Repository) scanFeature(rows *sql.Rows, columns []string, layerName, geomColumn string) (domain.Feature, error) {
	// Create scan destinations
	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if err := rows.Scan(valuePtrs...); err != nil {
		return domain.Feature{}, err
	}

	feature := domain.Feature{
		LayerName:  layerName,
		Properties: make(map[string]interface{}),
	}

	for i, col := range columns {
		switch col {
		case "fid":
			if v, ok := values[i].(int64); ok {
				feature.ID = v
			}
		case geomColumn:
			// Skip raw geometry column
		default:
			// The last column is the AsText result, not an attribute
			if i == len(columns)-1 {
				continue
			}
			if values[i] != nil {
				feature.Properties[col] = values[i]
			}
		}
	}

	// The AsText result in the last column carries the point location
	wkt, ok := values[len(values)-1].(string)
	if !ok {
		return domain.Feature{}, fmt.Errorf("layer %s: feature %d has no readable geometry", layerName, feature.ID)
	}
	lon, lat, err := ParsePointWKT(wkt)
	if err != nil {
		return domain.Feature{}, fmt.Errorf("layer %s: feature %d: %w", layerName, feature.ID, err)
	}
	feature.Location = domain.Geographic{Lon: lon, Lat: lat}

	return feature, nil
}

// DeriveDatasetID derives a dataset ID from the file path.
// It extracts the filename without extension as the dataset identifier.
func DeriveDatasetID(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// GetConnection returns the database connection for a specific dataset.
func (r *Repository) GetConnection(datasetID string) *sql.DB {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connections[datasetID]
}
