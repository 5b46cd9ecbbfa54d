package watcher

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		want Operation
	}{
		{"remove is delete", fsnotify.Remove, OpDelete},
		{"rename is delete", fsnotify.Rename, OpDelete},
		{"create is create", fsnotify.Create, OpCreate},
		{"write is modify", fsnotify.Write, OpModify},
		{"chmod is modify", fsnotify.Chmod, OpModify},
		{"remove beats write", fsnotify.Remove | fsnotify.Write, OpDelete},
		{"rename beats create", fsnotify.Rename | fsnotify.Create, OpDelete},
		{"create beats write", fsnotify.Create | fsnotify.Write, OpCreate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.op); got != tt.want {
				t.Errorf("classify(%v) = %v, want %v", tt.op, got, tt.want)
			}
		})
	}
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name   string
		queued Operation
		next   Operation
		want   Operation
	}{
		{"delete then create is a replacement", OpDelete, OpCreate, OpCreate},
		{"delete overrides modify", OpModify, OpDelete, OpDelete},
		{"delete overrides create", OpCreate, OpDelete, OpDelete},
		{"modify after create stays create", OpCreate, OpModify, OpCreate},
		{"modify after modify stays modify", OpModify, OpModify, OpModify},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coalesce(tt.queued, tt.next); got != tt.want {
				t.Errorf("coalesce(%v, %v) = %v, want %v", tt.queued, tt.next, got, tt.want)
			}
		})
	}
}

func TestOperationString(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpCreate, "create"},
		{OpModify, "modify"},
		{OpDelete, "delete"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.op.String(); got != tt.want {
				t.Errorf("Operation.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDatasetFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"cities.gpkg", true},
		{"cities.GPKG", true},
		{"cities.GpKg", true},
		{"/data/datasets/cities.gpkg", true},
		{"notes.txt", false},
		{"cities.gpkg.bak", false},
		{"gpkg", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := isDatasetFile(tt.path); got != tt.want {
				t.Errorf("isDatasetFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
