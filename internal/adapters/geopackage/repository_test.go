package geopackage

import (
	"math"
	"testing"
)

func TestDeriveDatasetID(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "simple filename",
			path: "/data/test.gpkg",
			want: "test",
		},
		{
			name: "nested path",
			path: "/var/data/geopackages/germany.gpkg",
			want: "germany",
		},
		{
			name: "relative path",
			path: "data/test.gpkg",
			want: "test",
		},
		{
			name: "filename only",
			path: "test.gpkg",
			want: "test",
		},
		{
			name: "different extension",
			path: "/data/test.sqlite",
			want: "test",
		},
		{
			name: "no extension",
			path: "/data/testfile",
			want: "testfile",
		},
		{
			name: "multiple dots",
			path: "/data/test.backup.gpkg",
			want: "test.backup",
		},
		{
			name: "with spaces",
			path: "/data/my dataset.gpkg",
			want: "my dataset",
		},
		{
			name: "empty path",
			path: "",
			want: "",
		},
		{
			name: "just extension",
			path: ".gpkg",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveDatasetID(tt.path); got != tt.want {
				t.Errorf("DeriveDatasetID(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestParsePointWKT(t *testing.T) {
	tests := []struct {
		name     string
		wkt      string
		lon, lat float64
		wantErr  bool
	}{
		{
			name: "plain point",
			wkt:  "POINT(13.405 52.52)",
			lon:  13.405, lat: 52.52,
		},
		{
			name: "point with space",
			wkt:  "POINT (10 50)",
			lon:  10, lat: 50,
		},
		{
			name: "negative coordinates",
			wkt:  "POINT(-74.006 -33.868)",
			lon:  -74.006, lat: -33.868,
		},
		{
			name: "point z",
			wkt:  "POINT Z(10 50 120)",
			lon:  10, lat: 50,
		},
		{
			name: "multipoint with inner parens",
			wkt:  "MULTIPOINT((10 50), (11 51))",
			lon:  10, lat: 50,
		},
		{
			name: "multipoint without inner parens",
			wkt:  "MULTIPOINT(10 50, 11 51)",
			lon:  10, lat: 50,
		},
		{
			name:    "polygon rejected",
			wkt:     "POLYGON((0 0, 1 0, 1 1, 0 0))",
			wantErr: true,
		},
		{
			name:    "empty string",
			wkt:     "",
			wantErr: true,
		},
		{
			name:    "no coordinates",
			wkt:     "POINT()",
			wantErr: true,
		},
		{
			name:    "non-numeric",
			wkt:     "POINT(a b)",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lon, lat, err := ParsePointWKT(tt.wkt)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePointWKT(%q) error = %v, wantErr %v", tt.wkt, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if math.Abs(lon-tt.lon) > 1e-12 || math.Abs(lat-tt.lat) > 1e-12 {
				t.Errorf("ParsePointWKT(%q) = (%g, %g), want (%g, %g)", tt.wkt, lon, lat, tt.lon, tt.lat)
			}
		})
	}
}

func TestExtractGeometryType(t *testing.T) {
	tests := []struct {
		name string
		wkt  string
		want string
	}{
		{
			name: "POINT",
			wkt:  "POINT(10 50)",
			want: "POINT",
		},
		{
			name: "POLYGON",
			wkt:  "POLYGON((0 0, 1 0, 1 1, 0 1, 0 0))",
			want: "POLYGON",
		},
		{
			name: "MULTIPOINT",
			wkt:  "MULTIPOINT((10 50))",
			want: "MULTIPOINT",
		},
		{
			name: "POINT Z",
			wkt:  "POINT Z(10 50 100)",
			want: "POINT Z",
		},
		{
			name: "empty string",
			wkt:  "",
			want: "",
		},
		{
			name: "no parenthesis",
			wkt:  "INVALID",
			want: "",
		},
		{
			name: "only parenthesis",
			wkt:  "(0 0)",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractGeometryType(tt.wkt); got != tt.want {
				t.Errorf("ExtractGeometryType(%q) = %q, want %q", tt.wkt, got, tt.want)
			}
		})
	}
}

func TestGetSpatiaLiteLibraryPaths(t *testing.T) {
	paths := getSpatiaLiteLibraryPaths()

	// Should return at least some paths
	if len(paths) == 0 {
		t.Error("getSpatiaLiteLibraryPaths() returned empty slice")
	}
}

func TestNewRepository(t *testing.T) {
	repo := NewRepository()

	if repo == nil {
		t.Fatal("NewRepository() returned nil")
	}

	if repo.connections == nil {
		t.Error("connections map should be initialized")
	}

	if repo.datasets == nil {
		t.Error("datasets map should be initialized")
	}
}

func TestRepositoryGetConnection(t *testing.T) {
	repo := NewRepository()

	// Should return nil for non-existent connection
	conn := repo.GetConnection("nonexistent")
	if conn != nil {
		t.Error("GetConnection should return nil for non-existent dataset")
	}
}
