package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// sampleRecord builds a multipart inspection payload: 3 parts
// (piz/piz/zip, one deep), 7 channels across 2 parts, 3 attributes.
func sampleRecord() *Record {
	return &Record{
		SchemaVersion: 1,
		File: FileInfo{
			Path:           "/data/shots/sh010_comp_v003.exr",
			SizeBytes:      10485760,
			Mtime:          "2026-03-01T10:00:00+00:00",
			MultipartCount: 3,
			IsDeep:         true,
		},
		Parts: []Part{
			{
				PartIndex:        0,
				PartName:         "rgba",
				Compression:      "piz",
				DataWindow:       []any{0.0, 0.0, 1919.0, 1079.0},
				DisplayWindow:    []any{0.0, 0.0, 1919.0, 1079.0},
				PixelAspectRatio: 1.0,
				LineOrder:        "increasingY",
			},
			{
				PartIndex:   1,
				PartName:    "diffuse",
				Compression: "piz",
				IsTiled:     true,
				TileWidth:   64,
				TileHeight:  64,
			},
			{
				PartIndex:   2,
				PartName:    "deepdata",
				Compression: "zip",
				IsDeep:      true,
			},
		},
		Channels: []Channel{
			{PartIndex: 0, Name: "R", Type: "half", XSampling: 1, YSampling: 1},
			{PartIndex: 0, Name: "G", Type: "half", XSampling: 1, YSampling: 1},
			{PartIndex: 0, Name: "B", Type: "half", XSampling: 1, YSampling: 1},
			{PartIndex: 0, Name: "A", Type: "half", XSampling: 1, YSampling: 1},
			{PartIndex: 1, Name: "diffuse.R", Type: "half", XSampling: 1, YSampling: 1},
			{PartIndex: 1, Name: "diffuse.G", Type: "half", XSampling: 1, YSampling: 1},
			{PartIndex: 1, Name: "diffuse.B", Type: "half", XSampling: 1, YSampling: 1},
		},
		Attributes: Attributes{Parts: [][]PartAttribute{
			{
				{Name: "pixelAspectRatio", Type: "float", Value: 1.0},
				{Name: "comments", Type: "string", Value: "final comp"},
			},
			{
				{Name: "renderLayer", Type: "string", Value: "diffuse"},
			},
			{},
		}},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	return NewStore(db, StoreOptions{})
}

func writePayload(t *testing.T, dir string, name string, rec *Record) string {
	t.Helper()
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, b, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}
