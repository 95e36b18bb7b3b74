// Package summaryformat encodes report summaries as JSON or MessagePack.
package summaryformat

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the encoding
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgPack Format = "msgpack"
)

// FormatForPath picks MessagePack for .msgpack and .mp files and JSON for anything else
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return FormatMsgPack
	default:
		return FormatJSON
	}
}

// Formatter handles encoding data in JSON or MessagePack format
type Formatter struct{}

// NewFormatter creates a new summary formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Write encodes data to w in the given format
func (f *Formatter) Write(w io.Writer, format Format, data any) error {
	switch format {
	case FormatMsgPack:
		return f.writeMsgPack(w, data)
	case FormatJSON, "":
		return f.writeJSON(w, data)
	default:
		return fmt.Errorf("unsupported summary format %q", format)
	}
}

// WriteFile encodes data into the file at path, choosing the format from its extension
func (f *Formatter) WriteFile(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := f.Write(file, FormatForPath(path), data); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}

func (f *Formatter) writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *Formatter) writeMsgPack(w io.Writer, data any) error {
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}
