package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// ValidationError reports a structurally invalid payload (required
// field missing). It is surfaced before any transaction is opened.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payload missing %s", e.Field)
}

// rowSet is the full projection of one record across the four
// relations, ready for parent-before-children insertion.
type rowSet struct {
	file       FileRecord
	parts      []PartRecord
	channels   []ChannelRecord
	attributes []AttributeRecord
}

func projectRows(rec *Record, embedding []float32, fingerprint []float32, fileID string, schemaVersion int, now time.Time) (*rowSet, error) {
	file, err := fileRow(rec, embedding, fileID, schemaVersion, now)
	if err != nil {
		return nil, err
	}
	return &rowSet{
		file:       file,
		parts:      partRows(rec, file.FileID),
		channels:   channelRows(rec, file.FileID, fingerprint),
		attributes: attributeRows(rec, file.FileID),
	}, nil
}

// fileRow builds the parent row. When fileID is empty a deterministic
// identifier is derived from path and mtime.
func fileRow(rec *Record, embedding []float32, fileID string, schemaVersion int, now time.Time) (FileRecord, error) {
	if rec == nil || rec.File.Path == "" {
		return FileRecord{}, &ValidationError{Field: "file.path"}
	}
	if fileID == "" {
		fileID = FileID(rec.File.Path, rec.File.Mtime)
	}
	return FileRecord{
		FileID:              fileID,
		FilePath:            rec.File.Path,
		FilePathNormalized:  NormalizePath(rec.File.Path),
		HeaderHash:          HeaderHash(rec),
		SizeBytes:           rec.File.SizeBytes,
		Mtime:               rec.File.Mtime,
		MultipartCount:      rec.File.MultipartCount,
		IsDeep:              rec.File.IsDeep,
		MetadataEmbedding:   pgvector.NewVector(embedding),
		SchemaVersion:       schemaVersion,
		InspectionTimestamp: now,
		InspectionCount:     1,
		LastInspected:       now,
	}, nil
}

// partRows projects one row per part. Zero parts is an explicitly
// empty result, not an error.
func partRows(rec *Record, fileID string) []PartRecord {
	out := make([]PartRecord, 0, len(rec.Parts))
	for _, p := range rec.Parts {
		out = append(out, PartRecord{
			FileID:           fileID,
			FilePath:         rec.File.Path,
			PartIndex:        p.PartIndex,
			PartName:         p.PartName,
			ViewName:         p.ViewName,
			MultiView:        len(p.MultiView) > 0,
			DataWindow:       jsonText(p.DataWindow),
			DisplayWindow:    jsonText(p.DisplayWindow),
			PixelAspectRatio: p.PixelAspectRatio,
			LineOrder:        p.LineOrder,
			Compression:      p.Compression,
			IsTiled:          p.IsTiled,
			TileWidth:        p.TileWidth,
			TileHeight:       p.TileHeight,
			TileDepth:        p.TileDepth,
			IsDeep:           p.IsDeep,
		})
	}
	return out
}

// channelRows projects one row per channel across all parts. The
// fingerprint vector is attached to the first row only and left NULL on
// the rest; one copy per file is enough for similarity search, and the
// store pays for large vectors per row.
func channelRows(rec *Record, fileID string, fingerprint []float32) []ChannelRecord {
	out := make([]ChannelRecord, 0, len(rec.Channels))
	for i, ch := range rec.Channels {
		row := ChannelRecord{
			FileID:      fileID,
			FilePath:    rec.File.Path,
			PartIndex:   ch.PartIndex,
			ChannelName: ch.Name,
			ChannelType: ch.Type,
			XSampling:   ch.XSampling,
			YSampling:   ch.YSampling,
		}
		if i == 0 && len(fingerprint) > 0 {
			v := pgvector.NewVector(fingerprint)
			row.ChannelFingerprint = &v
		}
		out = append(out, row)
	}
	return out
}

// attributeRows projects one row per attribute across all parts,
// keyed by part order as the inspector emitted them.
func attributeRows(rec *Record, fileID string) []AttributeRecord {
	var out []AttributeRecord
	for partIndex, attrs := range rec.Attributes.Parts {
		for _, attr := range attrs {
			out = append(out, AttributeRecord{
				FileID:         fileID,
				FilePath:       rec.File.Path,
				PartIndex:      partIndex,
				AttributeName:  attr.Name,
				AttributeType:  attr.Type,
				AttributeValue: jsonText(attr.Value),
			})
		}
	}
	return out
}

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
