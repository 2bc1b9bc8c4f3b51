package core

// decode.go converts uploaded bytes into text for the tokenizer.
//
// Spreadsheet tools commonly prepend a byte order mark, and Windows exports
// are sometimes UTF-16. Both are handled by the x/text BOM override: a UTF-8
// or UTF-16 BOM selects the matching decoder and is removed, and text without
// a BOM is read as UTF-8. Invalid UTF-8 sequences become U+FFFD rather than
// failing the upload.

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrFileTooLarge is returned when an input exceeds the configured size limit.
var ErrFileTooLarge = errors.New("file too large")

func textDecoder() transform.Transformer {
	return unicode.BOMOverride(unicode.UTF8.NewDecoder())
}

// DecodeText returns data as UTF-8 text with any BOM removed.
func DecodeText(data []byte) (string, error) {
	out, _, err := transform.Bytes(textDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("encoding error: %w", err)
	}
	return string(out), nil
}

// ReadText reads r to the end and decodes it like DecodeText. When limit is
// positive, inputs longer than limit bytes fail with ErrFileTooLarge.
func ReadText(r io.Reader, limit int64) (string, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}

	var raw bytes.Buffer
	n, err := raw.ReadFrom(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if limit > 0 && n > limit {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, limit)
	}

	return DecodeText(raw.Bytes())
}
