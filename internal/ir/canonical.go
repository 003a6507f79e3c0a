package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON.
// CRITICAL: This is the ONLY serialization used for action digests and
// golden traces.
//
// Differences from encoding/json:
//   - Object keys sorted by UTF-16 code units
//   - No HTML escaping
//   - Strings are NFC normalized
//   - Numbers use the ECMAScript shortest form (RFC 8785 section 3.2.2.3)
//
// v may be an IRValue or any plain Go value accepted by ToValue.
func MarshalCanonical(v any) ([]byte, error) {
	iv, err := ToValue(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeCanonical(&buf, iv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CanonicalString renders v canonically, falling back to %v for values that
// have no canonical form (funcs, channels, NaN). Used for logs and traces.
func CanonicalString(v any) string {
	b, err := MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func writeCanonical(buf *bytes.Buffer, v IRValue) error {
	switch val := v.(type) {
	case nil, IRNull:
		buf.WriteString("null")
	case IRString:
		return writeCanonicalString(buf, string(val))
	case IRInt:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case IRFloat:
		return writeCanonicalFloat(buf, float64(val))
	case IRBool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case IRArray:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case IRObject:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown IRValue type: %T", v)
	}
	return nil
}

// writeCanonicalFloat writes f the way ECMAScript Number.prototype.toString
// does: plain decimal notation for 1e-6 <= |f| < 1e21, exponent notation
// without exponent zero padding otherwise.
func writeCanonicalFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("number has no JSON form: %v", f)
	}
	if f == 0 {
		buf.WriteByte('0')
		return nil
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	buf.WriteString(mantissa + "e" + sign + digits)
	return nil
}

// writeCanonicalString writes s as an RFC 8785 string literal.
// Only quote, backslash, and control characters are escaped. encoding/json
// escapes U+2028 and U+2029 for JavaScript; RFC 8785 does not, so those two
// are restored after encoding.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	buf.Write(restoreLineSeparators(out))
	return nil
}

// restoreLineSeparators replaces the \u2028 and \u2029 escapes emitted by
// encoding/json with the literal characters. An escape preceded by an odd
// run of backslashes is literal text and is left alone.
func restoreLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && bytes.HasPrefix(data[i+1:], []byte("u202")) &&
			(data[i+5] == '8' || data[i+5] == '9') {
			run := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				run++
			}
			if run%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}
