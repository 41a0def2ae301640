package catalog

import (
	"errors"
	"testing"
	"time"
)

func projectSample(t *testing.T) *rowSet {
	t.Helper()
	rec := sampleRecord()
	embedding, err := MetadataEmbedding(rec, DefaultMetadataDim)
	if err != nil {
		t.Fatal(err)
	}
	fingerprint, err := ChannelFingerprint(rec.Channels, DefaultChannelDim)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := projectRows(rec, embedding, fingerprint, "", 1, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestProjectRows_Scenario(t *testing.T) {
	rows := projectSample(t)

	if got := rows.file.MetadataEmbedding.Slice(); len(got) != DefaultMetadataDim {
		t.Fatalf("metadata embedding length: got %d, want %d", len(got), DefaultMetadataDim)
	}
	if len(rows.parts) != 3 {
		t.Fatalf("parts rows: got %d, want 3", len(rows.parts))
	}
	if len(rows.channels) != 7 {
		t.Fatalf("channels rows: got %d, want 7", len(rows.channels))
	}
	if len(rows.attributes) != 3 {
		t.Fatalf("attributes rows: got %d, want 3", len(rows.attributes))
	}

	fileID := rows.file.FileID
	if len(fileID) != 16 {
		t.Fatalf("file id length: got %d", len(fileID))
	}
	for i, p := range rows.parts {
		if p.FileID != fileID {
			t.Fatalf("part %d file id mismatch", i)
		}
	}
	for i, c := range rows.channels {
		if c.FileID != fileID {
			t.Fatalf("channel %d file id mismatch", i)
		}
	}
	for i, a := range rows.attributes {
		if a.FileID != fileID {
			t.Fatalf("attribute %d file id mismatch", i)
		}
	}
}

func TestChannelRows_FingerprintOnFirstRowOnly(t *testing.T) {
	rows := projectSample(t)
	if rows.channels[0].ChannelFingerprint == nil {
		t.Fatalf("first channel row missing fingerprint")
	}
	if got := rows.channels[0].ChannelFingerprint.Slice(); len(got) != DefaultChannelDim {
		t.Fatalf("fingerprint length: got %d, want %d", len(got), DefaultChannelDim)
	}
	for i, c := range rows.channels[1:] {
		if c.ChannelFingerprint != nil {
			t.Fatalf("channel row %d carries a redundant fingerprint", i+1)
		}
	}
}

func TestPartRows_SerializedWindows(t *testing.T) {
	rows := projectSample(t)
	if rows.parts[0].DataWindow != "[0,0,1919,1079]" {
		t.Fatalf("data window serialization: got %q", rows.parts[0].DataWindow)
	}
	// Absent windows serialize as JSON null, not empty text.
	if rows.parts[2].DataWindow != "null" {
		t.Fatalf("missing data window: got %q", rows.parts[2].DataWindow)
	}
}

func TestFileRow_MissingPath(t *testing.T) {
	rec := sampleRecord()
	rec.File.Path = ""
	_, err := fileRow(rec, nil, "", 1, time.Now().UTC())
	if err == nil {
		t.Fatalf("expected error for missing path")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Field != "file.path" {
		t.Fatalf("field: got %q", verr.Field)
	}
}

func TestFileRow_CallerSuppliedID(t *testing.T) {
	rec := sampleRecord()
	row, err := fileRow(rec, nil, "abcdef0123456789", 1, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	if row.FileID != "abcdef0123456789" {
		t.Fatalf("caller-supplied id not honored: %q", row.FileID)
	}
}

func TestProjectRows_EmptySubstructures(t *testing.T) {
	rec := sampleRecord()
	rec.Parts = nil
	rec.Channels = nil
	rec.Attributes = Attributes{}
	embedding, err := MetadataEmbedding(rec, DefaultMetadataDim)
	if err != nil {
		t.Fatal(err)
	}
	fingerprint, err := ChannelFingerprint(rec.Channels, DefaultChannelDim)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := projectRows(rec, embedding, fingerprint, "", 1, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows.parts) != 0 || len(rows.channels) != 0 || len(rows.attributes) != 0 {
		t.Fatalf("expected empty child row sets, got %d/%d/%d",
			len(rows.parts), len(rows.channels), len(rows.attributes))
	}
}
