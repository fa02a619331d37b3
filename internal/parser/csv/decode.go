package csv

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// encodingFor maps a parser "encoding" option to a decoder. A nil Encoding
// means the input is already UTF-8.
func encodingFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// decodeReader wraps r so that it yields UTF-8 for the named charset. Close is
// forwarded to r.
func decodeReader(r io.ReadCloser, name string) (io.ReadCloser, error) {
	enc, err := encodingFor(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return &readCloser{Reader: transform.NewReader(r, enc.NewDecoder()), Closer: r}, nil
}
