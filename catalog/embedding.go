package catalog

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Default vector dimensions. The files schema may target 512 for the
// metadata embedding; both encoders accept any positive dimension.
const (
	DefaultMetadataDim = 384
	DefaultChannelDim  = 128
)

// VectorEmbeddingError is the only error kind the encoders produce.
// It wraps the underlying cause.
type VectorEmbeddingError struct {
	Cause error
}

func (e *VectorEmbeddingError) Error() string {
	return fmt.Sprintf("embedding computation failed: %v", e.Cause)
}

func (e *VectorEmbeddingError) Unwrap() error { return e.Cause }

func embeddingErrf(format string, args ...any) error {
	return &VectorEmbeddingError{Cause: fmt.Errorf(format, args...)}
}

// MetadataEmbedding computes a deterministic unit-norm vector for a
// complete inspection record. The same record always yields the same
// vector: the leading components are normalized structural signals, the
// rest are derived from a sha256 digest of the record's canonical JSON
// form. No seed, process or platform state is involved.
func MetadataEmbedding(rec *Record, dim int) ([]float32, error) {
	if dim <= 0 {
		dim = DefaultMetadataDim
	}
	if rec.isEmpty() {
		return nil, embeddingErrf("record has no file, parts or channels content")
	}
	features, err := ExtractFeatures(rec)
	if err != nil {
		return nil, &VectorEmbeddingError{Cause: err}
	}

	signals := []float64{
		float64(features.ChannelCount) / 64.0,
		float64(features.PartCount) / 16.0,
		boolSignal(features.IsDeep),
		boolSignal(features.IsTiled),
		boolSignal(features.HasMultiview),
		compressionSignal(features.Compression),
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, embeddingErrf("canonical serialization: %w", err)
	}
	digest := sha256.Sum256(payload)

	combined := append(signals, digestSignals(digest[:])...)
	return expandAndNormalize(combined, dim), nil
}

// ChannelFingerprint computes a deterministic unit-norm vector over an
// ordered channel list. An empty list yields the exact zero vector;
// that is the sole non-unit-norm output.
func ChannelFingerprint(channels []Channel, dim int) ([]float32, error) {
	if dim <= 0 {
		dim = DefaultChannelDim
	}
	if len(channels) == 0 {
		return make([]float32, dim), nil
	}

	count := len(channels)
	typeCounts := make(map[string]int, 4)
	layers := make(map[string]struct{})
	totalX, totalY := 0, 0
	names := make([]string, 0, count)
	for _, ch := range channels {
		typeCounts[ch.Type]++
		totalX += ch.XSampling
		totalY += ch.YSampling
		names = append(names, ch.Name)
		// Layer prefix, e.g. "diffuse.R" -> "diffuse".
		if i := strings.Index(ch.Name, "."); i > 0 {
			layers[ch.Name[:i]] = struct{}{}
		}
	}

	signals := []float64{
		float64(count) / 64.0,
		float64(len(layers)) / float64(count),
		float64(totalX) / float64(count*2),
		float64(totalY) / float64(count*2),
	}
	for _, dataType := range []string{"float", "half", "uint32", "uint8"} {
		signals = append(signals, float64(typeCounts[dataType])/float64(count))
	}

	digest := sha256.Sum256([]byte(strings.Join(names, "|")))
	combined := append(signals, digestSignals(digest[:])...)
	return expandAndNormalize(combined, dim), nil
}

// digestSignals folds a digest into values in [0,1), four bytes per
// value. Big-endian integer division keeps the mapping identical on
// every platform; raw bytes are never reinterpreted as floats.
func digestSignals(digest []byte) []float64 {
	out := make([]float64, 0, len(digest)/4)
	for i := 0; i+4 <= len(digest); i += 4 {
		u := binary.BigEndian.Uint32(digest[i : i+4])
		out = append(out, float64(u)/float64(1<<32))
	}
	return out
}

// expandAndNormalize fits values to dim and L2-normalizes. Padding is a
// pure function of the already-built vector, so it stays deterministic.
// A numerically degenerate magnitude yields the uniform unit vector
// rather than a division by ~0.
func expandAndNormalize(values []float64, dim int) []float32 {
	if len(values) > dim {
		values = values[:dim]
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	for len(values) < dim {
		seed := float64(len(values))
		next := math.Abs(math.Mod(sum*(seed+1), seed+2)) / (seed + 2)
		values = append(values, next)
		sum += next
	}

	magnitude := 0.0
	for _, v := range values {
		magnitude += v * v
	}
	magnitude = math.Sqrt(magnitude)

	out := make([]float32, dim)
	if magnitude < 1e-9 {
		uniform := float32(1.0 / math.Sqrt(float64(dim)))
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	for i, v := range values {
		out[i] = float32(v / magnitude)
	}
	return out
}
