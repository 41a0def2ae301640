package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizePath canonicalizes a file path for deduplication: absolute,
// symlink-resolved when the filesystem allows it, forward slashes,
// lowercase. It never fails; resolution errors (broken symlink, missing
// file, permission) fall back to plain absolute-path construction.
func NormalizePath(path string) string {
	resolved := path
	if abs, err := filepath.Abs(path); err == nil {
		resolved = abs
	}
	if target, err := filepath.EvalSymlinks(resolved); err == nil {
		resolved = target
	}
	return strings.ToLower(filepath.ToSlash(resolved))
}

// HeaderHash digests the structural elements that define "the same
// logical content": multipart count, deep flag and the full canonical
// parts projection. Size and mtime are deliberately excluded so that
// re-inspecting an unchanged file resolves to the same key even when
// filesystem metadata drifted.
func HeaderHash(rec *Record) string {
	partsJSON, err := json.Marshal(rec.Parts)
	if err != nil {
		// Parts decoded from JSON always re-marshal; guard anyway.
		partsJSON = []byte("[]")
	}
	h := sha256.New()
	fmt.Fprintf(h, "%d%t", rec.File.MultipartCount, rec.File.IsDeep)
	h.Write(partsJSON)
	return hex.EncodeToString(h.Sum(nil))
}

const fileIDHexLen = 16

// FileID derives the synthetic primary key for a file from its path,
// mtime and a path digest, truncated to a fixed short length. Used when
// the caller supplies no pre-existing identifier.
func FileID(path string, mtime string) string {
	pathDigest := sha256.Sum256([]byte(path))
	sum := sha256.Sum256([]byte(path + mtime + hex.EncodeToString(pathDigest[:])))
	return hex.EncodeToString(sum[:])[:fileIDHexLen]
}
