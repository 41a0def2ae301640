package catalog

// Payload types mirror the JSON documents produced by the external EXR
// inspector. The inspector owns these documents; this package only
// decodes and projects them.

type Record struct {
	SchemaVersion int        `json:"schema_version,omitempty"`
	File          FileInfo   `json:"file"`
	Parts         []Part     `json:"parts"`
	Channels      []Channel  `json:"channels"`
	Attributes    Attributes `json:"attributes"`
}

type FileInfo struct {
	Path           string `json:"path"`
	SizeBytes      int64  `json:"size_bytes"`
	Mtime          string `json:"mtime"`
	MultipartCount int    `json:"multipart_count"`
	IsDeep         bool   `json:"is_deep"`
}

type Part struct {
	PartIndex int      `json:"part_index"`
	PartName  string   `json:"part_name,omitempty"`
	ViewName  string   `json:"view_name,omitempty"`
	MultiView []string `json:"multi_view,omitempty"`
	// Windows are inspector-serialized values of no fixed shape; they are
	// hashed canonically and stored as JSON text, never interpreted.
	DataWindow       any     `json:"data_window,omitempty"`
	DisplayWindow    any     `json:"display_window,omitempty"`
	PixelAspectRatio float64 `json:"pixel_aspect_ratio,omitempty"`
	LineOrder        string  `json:"line_order,omitempty"`
	Compression      string  `json:"compression,omitempty"`
	IsTiled          bool    `json:"is_tiled,omitempty"`
	TileWidth        int     `json:"tile_width,omitempty"`
	TileHeight       int     `json:"tile_height,omitempty"`
	TileDepth        int     `json:"tile_depth,omitempty"`
	IsDeep           bool    `json:"is_deep,omitempty"`
}

type Channel struct {
	PartIndex int    `json:"part_index"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	XSampling int    `json:"x_sampling"`
	YSampling int    `json:"y_sampling"`
}

// Attributes groups arbitrary name/type/value triples per part, indexed
// by part order as the inspector emits them.
type Attributes struct {
	Parts [][]PartAttribute `json:"parts"`
}

type PartAttribute struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// isEmpty reports whether the record carries no usable content at all.
// Such records are rejected by the feature extractor and the encoders.
func (r *Record) isEmpty() bool {
	if r == nil {
		return true
	}
	return r.File == (FileInfo{}) && len(r.Parts) == 0 && len(r.Channels) == 0
}
