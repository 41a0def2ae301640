package catalog

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// FileRecord is the parent row: one per distinct
// (file_path_normalized, header_hash) pair. The composite unique index
// is what makes concurrent upserts of the same key safe: of two racing
// inserts one fails instead of silently duplicating.
type FileRecord struct {
	FileID             string `gorm:"primaryKey;size:16"`
	FilePath           string `gorm:"type:text"`
	FilePathNormalized string `gorm:"uniqueIndex:uniq_path_hash;size:1024"`
	HeaderHash         string `gorm:"uniqueIndex:uniq_path_hash;size:64"`
	SizeBytes          int64
	Mtime              string `gorm:"size:64"`
	MultipartCount     int
	IsDeep             bool
	MetadataEmbedding  pgvector.Vector `gorm:"type:vector(384)"`
	SchemaVersion      int
	// Audit fields: first inspection timestamp, touch count and the
	// last time the same logical content was seen again.
	InspectionTimestamp time.Time
	InspectionCount     int
	LastInspected       time.Time `gorm:"index"`
}

func (FileRecord) TableName() string { return "files" }

type PartRecord struct {
	ID               uint   `gorm:"primaryKey"`
	FileID           string `gorm:"index;size:16"`
	FilePath         string `gorm:"type:text"`
	PartIndex        int    `gorm:"index"`
	PartName         string `gorm:"size:255"`
	ViewName         string `gorm:"size:255"`
	MultiView        bool
	DataWindow       string `gorm:"type:text"` // JSON serialized
	DisplayWindow    string `gorm:"type:text"` // JSON serialized
	PixelAspectRatio float64
	LineOrder        string `gorm:"size:32"`
	Compression      string `gorm:"size:32"`
	IsTiled          bool
	TileWidth        int
	TileHeight       int
	TileDepth        int
	IsDeep           bool
}

func (PartRecord) TableName() string { return "parts" }

// ChannelRecord rows carry the channel fingerprint only on the first
// row per file; the remaining rows leave it NULL. See channelRows.
type ChannelRecord struct {
	ID                 uint   `gorm:"primaryKey"`
	FileID             string `gorm:"index;size:16"`
	FilePath           string `gorm:"type:text"`
	PartIndex          int
	ChannelName        string `gorm:"size:255"`
	ChannelType        string `gorm:"size:32"`
	XSampling          int
	YSampling          int
	ChannelFingerprint *pgvector.Vector `gorm:"type:vector(128)"`
}

func (ChannelRecord) TableName() string { return "channels" }

type AttributeRecord struct {
	ID             uint   `gorm:"primaryKey"`
	FileID         string `gorm:"index;size:16"`
	FilePath       string `gorm:"type:text"`
	PartIndex      int
	AttributeName  string `gorm:"size:255"`
	AttributeType  string `gorm:"size:64"`
	AttributeValue string `gorm:"type:text"` // JSON serialized
}

func (AttributeRecord) TableName() string { return "attributes" }
