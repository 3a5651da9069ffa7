package utils

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// CharsetReader decodes input from the named MIME charset into UTF-8.
// Mail from the plant's office arrives in windows-1252 or iso-8859-1 as often
// as in UTF-8
func CharsetReader(charset string, input io.Reader) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	switch name {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return input, nil
	}
	enc, err := ianaindex.MIME.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(input), nil
}
