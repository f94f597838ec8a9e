package splitpatch

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is the source encoding assumed when none is configured.
const DefaultEncoding = "UTF-8"

// commonEncodings feeds the suggestions offered for an unknown encoding name.
var commonEncodings = []string{
	"utf-8",
	"iso-8859-1", "latin1", "iso-8859-2", "iso-8859-15",
	"windows-1250", "windows-1251", "windows-1252", "cp1252",
	"koi8-r", "koi8-u", "macintosh",
	"shift_jis", "euc-jp", "iso-2022-jp",
	"euc-kr", "gbk", "gb18030", "big5",
}

// unsupportedEncodings cannot be split on the newline byte. The UTF-16 forms
// spread a newline over two bytes and "replacement" decodes to U+FFFD only.
var unsupportedEncodings = map[string]bool{
	"utf-16le":    true,
	"utf-16be":    true,
	"replacement": true,
}

var errInvalidSequence = errors.New("invalid byte sequence")

// LineDecoder yields the lines of a patch transcoded to UTF-8. It is not
// restartable.
type LineDecoder struct {
	reader  *bufio.Reader
	decoder *encoding.Decoder
	encoder *encoding.Encoder
	name    string
	line    int
}

// NewLineDecoder wraps r. The encoding name follows the WHATWG labels
// ("latin1", "windows-1252", "shift_jis", ...); empty means UTF-8.
func NewLineDecoder(r io.Reader, encodingName string) (*LineDecoder, error) {
	name := strings.TrimSpace(encodingName)
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, &Error{
			Kind:    KindDecoding,
			Message: unknownEncodingMessage(name),
			Err:     err,
		}
	}

	canonical, _ := htmlindex.Name(enc)
	if unsupportedEncodings[canonical] {
		return nil, &Error{
			Kind:    KindDecoding,
			Message: fmt.Sprintf("encoding %q is not supported, patches are split on the newline byte", name),
		}
	}

	ld := &LineDecoder{reader: bufio.NewReader(r), name: name}
	if canonical != "utf-8" {
		ld.decoder = enc.NewDecoder()
		ld.encoder = enc.NewEncoder()
	}
	return ld, nil
}

// Next returns the next line including its terminator, or io.EOF once the
// input is exhausted.
func (d *LineDecoder) Next() (string, error) {
	raw, err := d.reader.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", &Error{Kind: KindUnreadableInput, Message: "failed to read patch", Line: d.line + 1, Err: err}
	}
	if len(raw) == 0 {
		return "", io.EOF
	}
	d.line++

	if d.decoder == nil {
		if !utf8.Valid(raw) {
			return "", &Error{Kind: KindDecoding, Message: "invalid UTF-8 in patch", Line: d.line}
		}
		return string(raw), nil
	}

	decoded, decErr := d.decoder.Bytes(raw)
	if decErr == nil && bytes.ContainsRune(decoded, utf8.RuneError) && !d.roundTrips(raw, decoded) {
		// x/text substitutes U+FFFD for undecodable input instead of failing.
		decErr = errInvalidSequence
	}
	if decErr != nil {
		return "", &Error{
			Kind:    KindDecoding,
			Message: fmt.Sprintf("cannot transcode line from %s", d.name),
			Line:    d.line,
			Err:     decErr,
		}
	}
	return string(decoded), nil
}

// roundTrips reports whether decoded encodes back to raw, which tells a
// U+FFFD present in the source apart from one substituted for bad bytes.
func (d *LineDecoder) roundTrips(raw, decoded []byte) bool {
	encoded, err := d.encoder.Bytes(decoded)
	return err == nil && bytes.Equal(encoded, raw)
}

// Line reports how many lines have been returned so far.
func (d *LineDecoder) Line() int {
	return d.line
}

// SuggestEncodings returns up to three known encoding names that fuzzily
// match name, best match first.
func SuggestEncodings(name string) []string {
	ranks := fuzzy.RankFindFold(name, commonEncodings)
	sort.Sort(ranks)
	suggestions := make([]string, 0, 3)
	for _, r := range ranks {
		if len(suggestions) == 3 {
			break
		}
		suggestions = append(suggestions, r.Target)
	}
	return suggestions
}

func unknownEncodingMessage(name string) string {
	msg := fmt.Sprintf("unknown encoding %q", name)
	if suggestions := SuggestEncodings(name); len(suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(suggestions, ", "))
	}
	return msg
}
