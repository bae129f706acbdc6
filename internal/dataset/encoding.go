package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Detection is the charset guess for a file.
type Detection struct {
	Charset    string
	Confidence int
}

// DetectFunc guesses the charset of raw bytes. An empty Charset means no guess.
type DetectFunc func(raw []byte) Detection

// DetectCharset runs the chardet text detector over raw.
func DetectCharset(raw []byte) Detection {
	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil || result == nil {
		return Detection{}
	}
	return Detection{Charset: result.Charset, Confidence: result.Confidence}
}

// DecodeError reports that no candidate encoding could decode a file.
type DecodeError struct {
	Path  string
	Tried []string
	Errs  []error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: no candidate encoding succeeded (tried %s)", e.Path, strings.Join(e.Tried, ", "))
}

func (e *DecodeError) Unwrap() []error { return e.Errs }

var (
	errInvalidUTF8     = errors.New("invalid utf-8 byte sequence")
	errUnknownEncoding = errors.New("unknown encoding")
)

type candidate struct {
	label string
	enc   encoding.Encoding
}

// candidates orders the detected charset before the fallbacks and drops
// labels naming an encoding already listed. Unknown labels are kept so they
// are reported as tried.
func candidates(detected string, fallbacks []string) []candidate {
	labels := make([]string, 0, len(fallbacks)+1)
	if strings.TrimSpace(detected) != "" {
		labels = append(labels, detected)
	}
	labels = append(labels, fallbacks...)

	seen := make(map[string]struct{}, len(labels))
	out := make([]candidate, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		enc, err := ianaindex.IANA.Encoding(label)
		key := strings.ToLower(label)
		if err == nil && enc != nil {
			if name, nameErr := ianaindex.IANA.Name(enc); nameErr == nil {
				key = name
			}
		} else {
			enc = nil
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, candidate{label: label, enc: enc})
	}
	return out
}

func isUTF8(enc encoding.Encoding) bool {
	return enc == unicode.UTF8 || enc == unicode.UTF8BOM
}

// decode converts raw into UTF-8 text. UTF-8 itself is validated strictly
// rather than patched with replacement characters.
func (c candidate) decode(raw []byte) ([]byte, error) {
	if c.enc == nil {
		return nil, fmt.Errorf("%s: %w", c.label, errUnknownEncoding)
	}
	if isUTF8(c.enc) {
		body := bytes.TrimPrefix(raw, utf8BOM)
		if !utf8.Valid(body) {
			return nil, fmt.Errorf("%s: %w", c.label, errInvalidUTF8)
		}
		return body, nil
	}
	out, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.label, err)
	}
	return bytes.TrimPrefix(out, utf8BOM), nil
}

// decodeText tries each candidate in order and returns the decoded text and
// the label that produced it.
func decodeText(path string, raw []byte, detected string, fallbacks []string) ([]byte, string, []string, error) {
	var (
		tried []string
		errs  []error
	)
	for _, cand := range candidates(detected, fallbacks) {
		tried = append(tried, cand.label)
		text, err := cand.decode(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return text, cand.label, tried, nil
	}
	return nil, "", tried, &DecodeError{Path: path, Tried: tried, Errs: errs}
}
