package catalog

import "testing"

func TestExtractFeatures(t *testing.T) {
	f, err := ExtractFeatures(sampleRecord())
	if err != nil {
		t.Fatal(err)
	}
	if f.ChannelCount != 7 {
		t.Fatalf("channel count: got %d, want 7", f.ChannelCount)
	}
	if f.PartCount != 3 {
		t.Fatalf("part count: got %d, want 3", f.PartCount)
	}
	if !f.IsDeep {
		t.Fatalf("expected is_deep")
	}
	if !f.IsTiled {
		t.Fatalf("expected is_tiled (part 1 is tiled)")
	}
	if f.HasMultiview {
		t.Fatalf("no part carries views, multiview should be false")
	}
	if f.Compression != "piz" {
		t.Fatalf("compression: got %q, want first-in-part-order %q", f.Compression, "piz")
	}
}

func TestExtractFeatures_CompressionIsFirstInPartOrder(t *testing.T) {
	rec := sampleRecord()
	// zip appears twice, piz once; part order still wins over frequency.
	rec.Parts[1].Compression = "zip"
	f, err := ExtractFeatures(rec)
	if err != nil {
		t.Fatal(err)
	}
	if f.Compression != "piz" {
		t.Fatalf("compression: got %q, want %q", f.Compression, "piz")
	}

	// Parts without a compression value are skipped, not defaulted.
	rec.Parts[0].Compression = ""
	f, err = ExtractFeatures(rec)
	if err != nil {
		t.Fatal(err)
	}
	if f.Compression != "zip" {
		t.Fatalf("compression: got %q, want %q", f.Compression, "zip")
	}
}

func TestExtractFeatures_EmptyRecordRejected(t *testing.T) {
	if _, err := ExtractFeatures(&Record{}); err == nil {
		t.Fatalf("expected error for empty record")
	}
	if _, err := ExtractFeatures(nil); err == nil {
		t.Fatalf("expected error for nil record")
	}
}

func TestCompressionSignal(t *testing.T) {
	if got := compressionSignal("none"); got != 0.0 {
		t.Fatalf("none: got %v", got)
	}
	if got := compressionSignal("PIZ"); got != 0.6 {
		t.Fatalf("case-insensitive piz: got %v", got)
	}
	// Unknown values fall back to mid-range, staying in [0,1].
	if got := compressionSignal("htj2k"); got != 0.5 {
		t.Fatalf("unknown: got %v", got)
	}
}
