package catalog

import (
	"fmt"
	"strings"
)

// Features is the scalar summary of one inspection record. It is
// recomputed on every call and never persisted.
type Features struct {
	ChannelCount int
	PartCount    int
	IsDeep       bool
	IsTiled      bool
	HasMultiview bool
	Compression  string
}

// ExtractFeatures reduces a record to its scalar features. The
// compression value is the first non-empty one in part order, so the
// result is stable without sorting value frequencies.
func ExtractFeatures(rec *Record) (Features, error) {
	if rec.isEmpty() {
		return Features{}, fmt.Errorf("record has no file, parts or channels content")
	}

	f := Features{
		ChannelCount: len(rec.Channels),
		PartCount:    len(rec.Parts),
		IsDeep:       rec.File.IsDeep,
		Compression:  "none",
	}
	compressionSet := false
	for _, p := range rec.Parts {
		if p.IsTiled {
			f.IsTiled = true
		}
		if len(p.MultiView) > 0 {
			f.HasMultiview = true
		}
		if !compressionSet && p.Compression != "" {
			f.Compression = p.Compression
			compressionSet = true
		}
	}
	return f, nil
}

// compressionSignal maps a compression name to a fixed value in [0,1].
// Unknown names map to the mid-range so they still contribute a bounded
// signal.
func compressionSignal(compression string) float64 {
	switch strings.ToLower(compression) {
	case "none":
		return 0.0
	case "rle":
		return 0.2
	case "zips":
		return 0.4
	case "zip":
		return 0.5
	case "piz":
		return 0.6
	case "pxr24":
		return 0.7
	case "b44":
		return 0.8
	case "b44a":
		return 0.85
	case "dwaa":
		return 0.9
	case "dwab":
		return 0.95
	default:
		return 0.5
	}
}

func boolSignal(v bool) float64 {
	if v {
		return 1.0
	}
	return 0.0
}
