// Package csvimport reads CSV uploads row by row and validates their fields.
package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// encodingProbeSize is how much of the decoded input is checked for valid UTF-8
const encodingProbeSize = 4096

// Parser reads a CSV file with a header row. A UTF-8 or UTF-16 byte order
// mark is honoured and stripped. Input without one must be UTF-8.
type Parser struct {
	delimiter  rune
	lazyQuotes bool
	trimSpace  bool

	reader     *csv.Reader
	headers    []string
	headerMap  map[string]int
	currentRow int
	totalRows  int
}

// ParserOption configures a Parser
type ParserOption func(*Parser)

// WithDelimiter sets the field delimiter (default ',')
func WithDelimiter(d rune) ParserOption {
	return func(p *Parser) {
		p.delimiter = d
	}
}

// WithLazyQuotes toggles lenient quote handling (default on)
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *Parser) {
		p.lazyQuotes = lazy
	}
}

// WithTrimSpace toggles trimming of header and field whitespace (default on)
func WithTrimSpace(trim bool) ParserOption {
	return func(p *Parser) {
		p.trimSpace = trim
	}
}

// NewParser wraps r. It fails with ErrEmptyFile or ErrInvalidEncoding
// before any row is read.
func NewParser(r io.Reader, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		delimiter:  ',',
		lazyQuotes: true,
		trimSpace:  true,
		headerMap:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	buf := bufio.NewReaderSize(decoded, encodingProbeSize)
	probe, err := buf.Peek(encodingProbeSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(probe))) == 0 {
		return nil, ErrEmptyFile
	}
	if len(probe) == encodingProbeSize {
		probe = trimPartialRune(probe)
	}
	// the decoder replaces invalid sequences with U+FFFD
	if bytes.ContainsRune(probe, utf8.RuneError) {
		return nil, ErrInvalidEncoding
	}

	p.reader = csv.NewReader(buf)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = p.lazyQuotes
	p.reader.TrimLeadingSpace = p.trimSpace
	p.reader.FieldsPerRecord = -1
	return p, nil
}

// trimPartialRune drops a multi-byte rune cut off at the end of b
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			break
		}
	}
	return b
}

// ParseHeader reads the header row. Header names are lower-cased.
func (p *Parser) ParseHeader() error {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, 0, len(record))
	for i, h := range record {
		name := strings.ToLower(p.clean(h))
		p.headers = append(p.headers, name)
		if name != "" {
			p.headerMap[name] = i
		}
	}
	if len(p.headerMap) == 0 {
		return ErrMissingHeader
	}
	p.currentRow = 1
	return nil
}

// Headers returns the parsed header names in file order
func (p *Parser) Headers() []string {
	return p.headers
}

// HasHeader reports whether the file has a column named name
func (p *Parser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// MissingHeaders returns the names in required the file lacks
func (p *Parser) MissingHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one data row keyed by header name. Line is the 1-based line in
// the file, counting the header as line 1.
type Row struct {
	Line int
	Data map[string]string
}

// Get returns the value of column, or "" when absent
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// GetOrDefault returns the value of column, or def when empty
func (r *Row) GetOrDefault(column, def string) string {
	if v := r.Data[column]; v != "" {
		return v
	}
	return def
}

// IsEmpty reports whether every field of the row is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow returns the next row, or io.EOF after the last one
func (p *Parser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, p.currentRow, err)
	}
	p.totalRows++

	row := &Row{
		Line: p.currentRow,
		Data: make(map[string]string, len(p.headerMap)),
	}
	for name, i := range p.headerMap {
		if i < len(record) {
			row.Data[name] = p.clean(record[i])
		} else {
			row.Data[name] = ""
		}
	}
	return row, nil
}

// ReadAll returns the remaining non-blank rows. maxRows <= 0 means no limit;
// otherwise more than maxRows data rows fails with ErrTooManyRows.
func (p *Parser) ReadAll(maxRows int) ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		if maxRows > 0 && len(rows) >= maxRows {
			return rows, fmt.Errorf("%w: limit is %d", ErrTooManyRows, maxRows)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}
	return rows, nil
}

// TotalRows returns the number of data rows read so far, blank ones included
func (p *Parser) TotalRows() int {
	return p.totalRows
}

func (p *Parser) clean(s string) string {
	if p.trimSpace {
		return strings.TrimSpace(s)
	}
	return s
}
