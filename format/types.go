// Package format defines the enumerations shared by the codec and export layers.
package format

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arloliu/pagesort/errs"
)

type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents plain text.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard streams.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 streams.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 frame streams.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Extension returns the conventional file suffix, including the dot.
// CompressionNone and unknown types return an empty string.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionS2:
		return ".s2"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// ParseCompression maps a case-insensitive name such as "zstd" or "none"
// to its CompressionType.
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "raw":
		return CompressionNone, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidCompression, name)
	}
}

// CompressionFromPath detects the compression of a file by its extension.
// Unrecognised extensions are treated as plain text.
func CompressionFromPath(path string) CompressionType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZstd
	case ".s2":
		return CompressionS2
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}
