package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var errUnrecognizedOutput = errors.New("unrecognized near-cli output")

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// parseCLIOutput extracts the value near-cli prints after its progress lines. near-cli formats
// results with Node's util.inspect, so the longest trailing block of lines that is either JSON
// or inspect output wins. A bare word on the last line is returned as a JSON string. Anything
// else is an error, including inspect output that near-cli truncated.
func parseCLIOutput(stdout []byte) (json.RawMessage, error) {
	text := strings.TrimSpace(ansiEscape.ReplaceAllString(string(stdout), ""))
	if text == "" {
		return json.RawMessage("null"), nil
	}

	var structErr error
	lines := strings.Split(text, "\n")
	for i := range lines {
		block := strings.TrimSpace(strings.Join(lines[i:], "\n"))
		if json.Valid([]byte(block)) {
			return json.RawMessage(block), nil
		}

		out, err := inspectToJSON(block)
		if err == nil {
			return out, nil
		}
		if structErr == nil && (block[0] == '{' || block[0] == '[') {
			structErr = err
		}
	}

	last := strings.TrimSpace(lines[len(lines)-1])
	if !strings.ContainsAny(last, "{}[]'\"`,:") {
		b, err := json.Marshal(last)
		return b, err
	}
	if structErr != nil {
		return nil, fmt.Errorf("%w: %w", errUnrecognizedOutput, structErr)
	}

	return nil, fmt.Errorf("%w: last line %q", errUnrecognizedOutput, last)
}

// inspectToJSON rewrites a value printed by util.inspect as JSON: identifier keys are quoted,
// single-quoted and backtick strings become JSON strings, undefined becomes null and BigInt
// suffixes are dropped.
func inspectToJSON(s string) (json.RawMessage, error) {
	p := &inspectParser{src: s}
	if err := p.value(); err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q after value", p.rest(16))
	}

	return json.RawMessage(p.out.Bytes()), nil
}

type inspectParser struct {
	src string
	pos int
	out bytes.Buffer
}

func (p *inspectParser) value() error {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return p.errorf("unexpected end of output")
	}
	if strings.HasPrefix(p.src[p.pos:], "...") {
		return p.errorf("output truncated by near-cli: %q", p.rest(24))
	}

	switch c := p.src[p.pos]; {
	case c == '{':
		return p.object()
	case c == '[':
		if p.pos+1 < len(p.src) && p.src[p.pos+1] >= 'A' && p.src[p.pos+1] <= 'Z' {
			return p.errorf("output truncated by near-cli: %q", p.rest(24))
		}
		return p.array()
	case c == '\'' || c == '"' || c == '`':
		return p.str()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.word()
	}
}

func (p *inspectParser) object() error {
	p.pos++
	p.out.WriteByte('{')
	for n := 0; ; n++ {
		p.skipSpace()
		if n > 0 && !p.consume(',') && !p.peek('}') {
			return p.errorf("expected ',' or '}', found %q", p.rest(16))
		}
		p.skipSpace()
		if p.consume('}') {
			p.out.WriteByte('}')
			return nil
		}
		if n > 0 {
			p.out.WriteByte(',')
		}

		if err := p.key(); err != nil {
			return err
		}
		p.skipSpace()
		if !p.consume(':') {
			return p.errorf("expected ':', found %q", p.rest(16))
		}
		p.out.WriteByte(':')
		if err := p.value(); err != nil {
			return err
		}
	}
}

func (p *inspectParser) array() error {
	p.pos++
	p.out.WriteByte('[')
	for n := 0; ; n++ {
		p.skipSpace()
		if n > 0 && !p.consume(',') && !p.peek(']') {
			return p.errorf("expected ',' or ']', found %q", p.rest(16))
		}
		p.skipSpace()
		if p.consume(']') {
			p.out.WriteByte(']')
			return nil
		}
		if n > 0 {
			p.out.WriteByte(',')
		}

		if err := p.value(); err != nil {
			return err
		}
	}
}

func (p *inspectParser) key() error {
	if p.pos < len(p.src) && strings.IndexByte(`'"`+"`", p.src[p.pos]) >= 0 {
		return p.str()
	}

	ident := p.ident()
	if ident == "" {
		return p.errorf("expected a key, found %q", p.rest(16))
	}

	return p.writeString(ident)
}

// str reads a quoted string, joining `'a' +` continuation lines.
func (p *inspectParser) str() error {
	var sb strings.Builder
	for {
		if err := p.quoted(&sb); err != nil {
			return err
		}

		save := p.pos
		p.skipSpace()
		if !p.consume('+') {
			p.pos = save
			break
		}
		p.skipSpace()
		if p.pos >= len(p.src) || strings.IndexByte(`'"`+"`", p.src[p.pos]) < 0 {
			return p.errorf("expected a string after '+'")
		}
	}

	return p.writeString(sb.String())
}

func (p *inspectParser) quoted(sb *strings.Builder) error {
	quote := p.src[p.pos]
	p.pos++
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++

		switch {
		case c == quote:
			return nil
		case c == '\n' && quote != '`':
			return p.errorf("newline in string")
		case c != '\\':
			sb.WriteByte(c)
			continue
		}

		if p.pos >= len(p.src) {
			break
		}
		esc := p.src[p.pos]
		p.pos++
		switch esc {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case 'x', 'u':
			size := 2
			if esc == 'u' {
				size = 4
			}
			if p.pos+size > len(p.src) {
				return p.errorf("short \\%c escape", esc)
			}
			r, err := strconv.ParseUint(p.src[p.pos:p.pos+size], 16, 32)
			if err != nil {
				return p.errorf("invalid \\%c escape: %v", esc, err)
			}
			p.pos += size
			sb.WriteRune(rune(r))
		default:
			sb.WriteByte(esc)
		}
	}

	return p.errorf("unterminated string")
}

func (p *inspectParser) number() error {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("0123456789+-.eE", p.src[p.pos]) >= 0 {
		p.pos++
	}
	num := p.src[start:p.pos]
	p.consume('n')

	if !json.Valid([]byte(num)) {
		return p.errorf("invalid number %q", num)
	}
	p.out.WriteString(num)

	return nil
}

func (p *inspectParser) word() error {
	switch w := p.ident(); w {
	case "true", "false", "null":
		p.out.WriteString(w)
	case "undefined":
		p.out.WriteString("null")
	case "":
		return p.errorf("unexpected %q", p.rest(16))
	default:
		return p.errorf("unexpected word %q", w)
	}

	return nil
}

func (p *inspectParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c != '_' && c != '$' && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9' || p.pos == start) {
			break
		}
		p.pos++
	}

	return p.src[start:p.pos]
}

func (p *inspectParser) writeString(s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	p.out.Write(b)

	return nil
}

func (p *inspectParser) skipSpace() {
	for p.pos < len(p.src) && strings.IndexByte(" \t\r\n", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *inspectParser) peek(c byte) bool {
	return p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *inspectParser) consume(c byte) bool {
	if !p.peek(c) {
		return false
	}
	p.pos++

	return true
}

func (p *inspectParser) rest(limit int) string {
	rest := p.src[p.pos:]
	if len(rest) > limit {
		rest = rest[:limit]
	}

	return rest
}

func (p *inspectParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}
