package memstore

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/sparql"
)

// LoadNTriples reads an N-Triples document into the store and returns the
// number of triples added. Blank node labels are scoped to the document: each
// label is replaced by a fresh uuid-based label so repeated loads never
// merge unrelated blank nodes. Nothing is added if the document is malformed.
func (st *Store) LoadNTriples(r io.Reader) (int, error) {
	var parsed []triple
	blanks := make(map[string]sparql.Term)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		t, err := parseLine(line, blanks)
		if err != nil {
			return 0, errors.WrapInvalid(errors.ErrParsingFailed, "memstore", "LoadNTriples",
				fmt.Sprintf("line %d: %v", lineNo, err))
		}
		parsed = append(parsed, t)
	}
	if err := scanner.Err(); err != nil {
		return 0, errors.WrapTransient(err, "memstore", "LoadNTriples", "read input")
	}

	added := 0
	for _, t := range parsed {
		ok, err := st.Add(t.s, t.p, t.o)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	st.logger.Info("Loaded N-Triples", "triples", added, "lines", lineNo)
	return added, nil
}

type lexer struct {
	s   string
	pos int
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.s) && (l.s[l.pos] == ' ' || l.s[l.pos] == '\t') {
		l.pos++
	}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.s) {
		return 0
	}
	return l.s[l.pos]
}

func parseLine(line string, blanks map[string]sparql.Term) (triple, error) {
	l := &lexer{s: line}

	var terms [3]sparql.Term
	for i := range terms {
		l.skipSpace()
		t, err := l.term(blanks)
		if err != nil {
			return triple{}, err
		}
		terms[i] = t
	}

	l.skipSpace()
	if l.peek() != '.' {
		return triple{}, fmt.Errorf("expected '.' at column %d", l.pos+1)
	}
	l.pos++
	l.skipSpace()
	if rest := l.s[l.pos:]; rest != "" && !strings.HasPrefix(rest, "#") {
		return triple{}, fmt.Errorf("unexpected trailing content %q", rest)
	}

	if !validTriple(terms[0], terms[1], terms[2]) {
		return triple{}, fmt.Errorf("invalid term kinds in triple")
	}
	return triple{s: terms[0], p: terms[1], o: terms[2]}, nil
}

func (l *lexer) term(blanks map[string]sparql.Term) (sparql.Term, error) {
	switch c := l.peek(); {
	case c == '<':
		iri, err := l.iri()
		if err != nil {
			return sparql.Term{}, err
		}
		return sparql.IRI(iri), nil

	case c == '_' && strings.HasPrefix(l.s[l.pos:], "_:"):
		l.pos += 2
		start := l.pos
		for l.pos < len(l.s) && l.s[l.pos] != ' ' && l.s[l.pos] != '\t' {
			l.pos++
		}
		label := strings.TrimSuffix(l.s[start:l.pos], ".")
		l.pos = start + len(label)
		if label == "" {
			return sparql.Term{}, fmt.Errorf("empty blank node label")
		}
		b, ok := blanks[label]
		if !ok {
			b = sparql.Blank(uuid.NewString())
			blanks[label] = b
		}
		return b, nil

	case c == '"':
		return l.literal()

	default:
		return sparql.Term{}, fmt.Errorf("unexpected character %q at column %d", c, l.pos+1)
	}
}

func (l *lexer) iri() (string, error) {
	end := strings.IndexByte(l.s[l.pos:], '>')
	if end < 0 {
		return "", fmt.Errorf("unterminated IRI at column %d", l.pos+1)
	}
	raw := l.s[l.pos+1 : l.pos+end]
	l.pos += end + 1
	if raw == "" {
		return "", fmt.Errorf("empty IRI")
	}
	return unescape(raw)
}

func (l *lexer) literal() (sparql.Term, error) {
	l.pos++ // opening quote
	start := l.pos
	for {
		if l.pos >= len(l.s) {
			return sparql.Term{}, fmt.Errorf("unterminated literal at column %d", start)
		}
		c := l.s[l.pos]
		if c == '\\' {
			l.pos += 2
			continue
		}
		if c == '"' {
			break
		}
		l.pos++
	}
	value, err := unescape(l.s[start:l.pos])
	if err != nil {
		return sparql.Term{}, err
	}
	l.pos++ // closing quote

	switch {
	case l.peek() == '@':
		l.pos++
		start := l.pos
		for l.pos < len(l.s) && (isAlnum(l.s[l.pos]) || l.s[l.pos] == '-') {
			l.pos++
		}
		if l.pos == start {
			return sparql.Term{}, fmt.Errorf("empty language tag")
		}
		return sparql.LangLiteral(value, l.s[start:l.pos]), nil

	case strings.HasPrefix(l.s[l.pos:], "^^"):
		l.pos += 2
		if l.peek() != '<' {
			return sparql.Term{}, fmt.Errorf("expected datatype IRI at column %d", l.pos+1)
		}
		dt, err := l.iri()
		if err != nil {
			return sparql.Term{}, err
		}
		return sparql.TypedLiteral(value, dt), nil
	}
	return sparql.Literal(value), nil
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape")
		}
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '"', '\'', '\\':
			b.WriteByte(s[i])
		case 'u', 'U':
			n := 4
			if s[i] == 'U' {
				n = 8
			}
			if i+1+n > len(s) {
				return "", fmt.Errorf("short unicode escape")
			}
			code, err := strconv.ParseUint(s[i+1:i+1+n], 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid unicode escape: %w", err)
			}
			b.WriteRune(rune(code))
			i += n
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return b.String(), nil
}
