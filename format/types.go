package format

import "strings"

type (
	ColumnType      uint8
	CompressionType uint8
)

const (
	TypeNumeric     ColumnType = 0x1 // TypeNumeric represents float64 values, NaN marks a missing value.
	TypeCategorical ColumnType = 0x2 // TypeCategorical represents a discrete set of string levels.
	TypeText        ColumnType = 0x3 // TypeText represents free text that is never modeled.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (t ColumnType) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	case TypeCategorical:
		return "categorical"
	case TypeText:
		return "text"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the defined column types.
func (t ColumnType) Valid() bool {
	return t >= TypeNumeric && t <= TypeText
}

// ParseColumnType maps a case-insensitive name to a ColumnType.
// It returns false for unknown names.
func ParseColumnType(name string) (ColumnType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "numeric", "number", "float":
		return TypeNumeric, true
	case "categorical", "factor", "category":
		return TypeCategorical, true
	case "text", "string":
		return TypeText, true
	default:
		return 0, false
	}
}

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

// ParseCompressionType maps a case-insensitive name to a CompressionType.
// It returns false for unknown names.
func ParseCompressionType(name string) (CompressionType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}
