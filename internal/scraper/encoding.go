package scraper

import (
	"bytes"
	"io"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// decodeHTML transcodes body to UTF-8 using forcedEncoding when set, else the
// charset advertised by contentType, else sniffed from a <meta> tag / byte
// patterns, per the encoding-resolution step of the per-topic procedure.
func decodeHTML(body []byte, contentType, forcedEncoding string) []byte {
	enc := resolveEncoding(body, contentType, forcedEncoding)
	if enc == nil {
		return body
	}
	decoded, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return body
	}
	return decoded
}

func resolveEncoding(body []byte, contentType, forcedEncoding string) encoding.Encoding {
	if forcedEncoding != "" {
		if enc, err := htmlindex.Get(forcedEncoding); err == nil {
			return enc
		}
	}
	_, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "" || name == "utf-8" {
		return nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil
	}
	return enc
}
