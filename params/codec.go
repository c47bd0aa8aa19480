package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// NumberError is reported by ParseStrict for a numeric key whose text is not
// a finite number. The pair is left out of the parsed store.
type NumberError struct {
	Key  string
	Text string
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("params: %q is not a number for key %q", e.Text, e.Key)
}

// Parse reads a URL query string. Values of keys listed in numeric become
// numbers; pairs whose text does not parse as a finite number are dropped.
// Repeated keys accumulate into a sequence in encounter order. Parse never
// fails.
func Parse(query string, numeric ...string) Params {
	p, _ := ParseStrict(query, numeric...)
	return p
}

// ParseStrict is Parse but also returns one *NumberError per dropped pair,
// combined with multierr.
func ParseStrict(query string, numeric ...string) (Params, error) {
	isNumeric := make(map[string]bool, len(numeric))
	for _, k := range numeric {
		isNumeric[k] = true
	}

	var (
		out  Params
		errs error
	)
	query = strings.TrimPrefix(query, "?")
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawVal, _ := strings.Cut(pair, "=")
		key, val := unescape(rawKey), unescape(rawVal)

		if !isNumeric[key] {
			out = out.Append(key, Text(val))
			continue
		}
		n, err := parseNumber(val)
		if err != nil {
			errs = multierr.Append(errs, errors.WithStack(&NumberError{Key: key, Text: val}))
			continue
		}
		out = out.Append(key, Number(n))
	}
	return out, errs
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not finite")
	}
	return f, nil
}

// unescape decodes like a browser does: '+' is a space and each broken
// percent escape is kept as written while the valid ones around it are
// decoded.
func unescape(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			buf = append(buf, ' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
		default:
			buf = append(buf, c)
		}
	}
	return string(buf)
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}

// escape encodes like encodeURIComponent: a space becomes %20, not '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Encode serializes the store as a query string. Keys appear in insertion
// order and every element of a sequence repeats its key. Spaces are
// written as %20.
func (p Params) Encode() string {
	var sb strings.Builder
	for _, k := range p.keys {
		ek := escape(k)
		for _, s := range p.vals[k].items {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(ek)
			sb.WriteByte('=')
			sb.WriteString(escape(s.String()))
		}
	}
	return sb.String()
}

func (p Params) String() string {
	return p.Encode()
}

// Values converts the store for use with net/http.
func (p Params) Values() url.Values {
	out := make(url.Values, len(p.keys))
	for _, k := range p.keys {
		for _, s := range p.vals[k].items {
			out.Add(k, s.String())
		}
	}
	return out
}

// MarshalJSON writes the store as an object: scalars as JSON strings or
// numbers, sequences as arrays.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')

		v := p.vals[k]
		if v.seq {
			buf.WriteByte('[')
		}
		for j, s := range v.items {
			if j > 0 {
				buf.WriteByte(',')
			}
			sb, err := s.MarshalJSON()
			if err != nil {
				return nil, errors.Wrapf(err, "params: key %q", k)
			}
			buf.Write(sb)
		}
		if v.seq {
			buf.WriteByte(']')
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.kind == KindNumber {
		return json.Marshal(s.num)
	}
	return json.Marshal(s.text)
}
