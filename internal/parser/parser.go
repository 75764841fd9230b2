package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pchreport/internal/table"
)

// ErrMalformedInput is returned by callers that require at least one node
// section with data. The parsers themselves never return it.
var ErrMalformedInput = errors.New("no node sections with data rows found")

// Parser converts raw input bytes into an aligned response table.
type Parser interface {
	Parse(r io.Reader, filename string) (*table.Aligned, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pch": true,
	".txt": true,
	".csv": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pch", ".txt":
		return &PunchParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
