package store

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	regHeaderV5 = "Windows Registry Editor Version 5.00"
	regHeaderV4 = "REGEDIT4"
)

var hivePrefixes = []string{`HKEY_CURRENT_USER\`, `HKCU\`}

// LoadRegFile reads a regedit export (.reg) into a Memory store. Keys
// under HKEY_CURRENT_USER are stored relative to the hive.
func LoadRegFile(path string) (*Memory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read reg file")
	}
	return ParseRegFile(b)
}

func ParseRegFile(b []byte) (*Memory, error) {
	text, err := decodeRegText(b)
	if err != nil {
		return nil, err
	}

	p := &regParser{mem: NewMemory()}
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pending strings.Builder
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if strings.HasSuffix(line, `\`) && !strings.HasPrefix(line, "[") {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			continue
		}
		if pending.Len() > 0 {
			pending.WriteString(line)
			line = pending.String()
			pending.Reset()
		}
		if err := p.line(line); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan reg file")
	}
	if pending.Len() > 0 {
		if err := p.line(pending.String()); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
	}
	if p.version == 0 {
		return nil, errors.New("missing reg file header")
	}
	return p.mem, nil
}

// decodeRegText handles the UTF-16LE exports of regedit 5 and ANSI
// REGEDIT4 exports written on GBK systems.
func decodeRegText(b []byte) (string, error) {
	switch {
	case bytes.HasPrefix(b, []byte{0xff, 0xfe}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := io.ReadAll(transform.NewReader(bytes.NewReader(b), dec))
		if err != nil {
			return "", errors.Wrap(err, "decode utf-16")
		}
		return string(out), nil
	case bytes.HasPrefix(b, []byte{0xef, 0xbb, 0xbf}):
		return string(b[3:]), nil
	case !utf8.Valid(b):
		out, err := io.ReadAll(transform.NewReader(bytes.NewReader(b), simplifiedchinese.GBK.NewDecoder()))
		if err != nil {
			return "", errors.Wrap(err, "decode gbk")
		}
		return string(out), nil
	default:
		return string(b), nil
	}
}

type regParser struct {
	mem     *Memory
	version int
	key     string
	skip    bool
}

func (p *regParser) line(line string) error {
	switch {
	case line == "" || strings.HasPrefix(line, ";"):
		return nil
	case p.version == 0:
		switch line {
		case regHeaderV5:
			p.version = 5
		case regHeaderV4:
			p.version = 4
		default:
			return errors.Errorf("unexpected header %q", line)
		}
		return nil
	case strings.HasPrefix(line, "["):
		if !strings.HasSuffix(line, "]") {
			return errors.Errorf("unterminated key %q", line)
		}
		key := line[1 : len(line)-1]
		p.skip = strings.HasPrefix(key, "-")
		p.key = trimHive(key)
		return nil
	case p.skip:
		return nil
	case p.key == "":
		return errors.New("value outside of a key")
	case strings.HasPrefix(line, "@="):
		return nil
	}

	name, rest, err := unquote(line)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(rest, "=") {
		return errors.Errorf("missing '=' after %q", name)
	}
	rest = strings.TrimSpace(rest[1:])
	if rest == "-" {
		p.mem.Delete(p.key, name)
		return nil
	}

	v, ok, err := p.value(rest)
	if err != nil {
		return errors.Wrapf(err, "value %q", name)
	}
	if ok {
		p.mem.Set(p.key, name, v)
	}
	return nil
}

func (p *regParser) value(data string) (Value, bool, error) {
	switch {
	case strings.HasPrefix(data, `"`):
		s, rest, err := unquote(data)
		if err != nil {
			return Value{}, false, err
		}
		if strings.TrimSpace(rest) != "" {
			return Value{}, false, errors.Errorf("trailing data %q", rest)
		}
		return StringValue(s), true, nil
	case strings.HasPrefix(data, "dword:"):
		i, err := strconv.ParseUint(data[len("dword:"):], 16, 32)
		if err != nil {
			return Value{}, false, errors.Wrap(err, "parse dword")
		}
		return DWordValue(uint32(i)), true, nil
	case strings.HasPrefix(data, "hex:"):
		b, err := decodeHex(data[len("hex:"):])
		if err != nil {
			return Value{}, false, err
		}
		return Value{Kind: Binary, Data: b}, true, nil
	case strings.HasPrefix(data, "hex(1):"), strings.HasPrefix(data, "hex(2):"):
		b, err := decodeHex(data[len("hex(2):"):])
		if err != nil {
			return Value{}, false, err
		}
		s := string(b)
		if p.version == 5 {
			if s, err = decodeUTF16(b); err != nil {
				return Value{}, false, err
			}
		}
		kind := String
		if data[4] == '2' {
			kind = ExpandString
		}
		return Value{Kind: kind, Data: []byte(strings.TrimRight(s, "\x00"))}, true, nil
	case strings.HasPrefix(data, "hex("):
		// multi-string, qword and friends are never consulted
		return Value{}, false, nil
	default:
		return Value{}, false, errors.Errorf("unknown data %q", data)
	}
}

func decodeUTF16(b []byte) (string, error) {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrap(err, "decode utf-16")
	}
	return string(out), nil
}

// unquote reads a leading "..." token with \\ and \" escapes and returns
// the remainder of s after the closing quote.
func unquote(s string) (string, string, error) {
	if !strings.HasPrefix(s, `"`) {
		return "", "", errors.Errorf("expected quoted string in %q", s)
	}
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			}
		case '"':
			return sb.String(), s[i+1:], nil
		default:
			sb.WriteByte(c)
		}
	}
	return "", "", errors.Errorf("unterminated string %q", s)
}

func trimHive(key string) string {
	key = strings.TrimPrefix(key, "-")
	for _, prefix := range hivePrefixes {
		if len(key) >= len(prefix) && strings.EqualFold(key[:len(prefix)], prefix) {
			return key[len(prefix):]
		}
	}
	return key
}
