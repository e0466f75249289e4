package downloader

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// DecompressResponseBody returns the decompressed body of a response.
// gzip is detected by its magic bytes, Brotli by the Content-Encoding header
// or by a first byte in the range Brotli streams usually start with.
//
// Returns:
//   - []byte: The decompressed body
//   - bool: true if decompression was performed
//   - error: any error encountered during decompression
func DecompressResponseBody(body []byte, contentEncoding string) ([]byte, bool, error) {
	if len(body) == 0 {
		return body, false, nil
	}

	contentEncoding = strings.ToLower(strings.TrimSpace(contentEncoding))

	// Try gzip
	if len(body) >= 2 && body[0] == 0x1f && body[1] == 0x8b {
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, false, err
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, false, err
		}
		return decompressed, true, nil
	}

	// Declared Brotli must decode
	if contentEncoding == "br" {
		decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, false, err
		}
		return decompressed, true, nil
	}

	// Heuristic Brotli; plain bodies fall through unchanged
	if contentEncoding == "" && body[0] >= 0x80 && body[0] <= 0x8f {
		decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return body, false, nil
		}
		return decompressed, true, nil
	}

	return body, false, nil
}
