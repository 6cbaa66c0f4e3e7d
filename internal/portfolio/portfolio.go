package portfolio

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var (
	// ErrMissingColumns is returned when the header lacks a required column.
	ErrMissingColumns = errors.New("missing required columns")
	// ErrNoRows is returned when the file has a header but no data rows.
	ErrNoRows = errors.New("no data rows")
)

// Columns lists the required header fields in canonical order.
var Columns = []string{"filename", "title", "description", "date", "location"}

// dateLayouts are the date forms accepted without a warning.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006/01/02",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"January 2006",
}

var repeatedSlash = regexp.MustCompile(`/{2,}`)

// Row is one data row of the CSV, fields trimmed.
type Row struct {
	Line        int // line number in the source file
	Filename    string
	Title       string
	Description string
	Date        string
	Location    string
}

// Photo is one entry of the generated portfolio data file. Field order is
// the JSON output order.
type Photo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Src         string `json:"src,omitempty"`
}

// Warning is a non-fatal problem found while converting rows.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d: %s", w.Line, w.Message)
}

// Options controls Convert.
type Options struct {
	ImagesPrefix string   // prepended to each filename to form src; empty leaves src unset
	PublicDir    string   // directory images are served from, checked for each src
	FS           afero.Fs // store PublicDir is resolved in; nil skips the check
}

// Parse reads a CSV with a header row naming at least the required columns.
// Column names are matched case-insensitively; extra columns are ignored.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	found := make([]string, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		found[i] = name
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s (found: %s)", ErrMissingColumns,
			strings.Join(missing, ", "), strings.Join(found, ", "))
	}

	field := func(record []string, col string) string {
		if i := index[col]; i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, Row{
			Line:        line,
			Filename:    field(record, "filename"),
			Title:       field(record, "title"),
			Description: field(record, "description"),
			Date:        field(record, "date"),
			Location:    field(record, "location"),
		})
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

// Convert builds photo entries from rows. Problems never drop a row; they
// are reported as warnings and the value is kept as written.
func Convert(rows []Row, opts Options) ([]Photo, []Warning) {
	prefix := normalizePrefix(opts.ImagesPrefix)

	photos := make([]Photo, 0, len(rows))
	var warnings []Warning
	warn := func(line int, format string, args ...any) {
		warnings = append(warnings, Warning{Line: line, Message: fmt.Sprintf(format, args...)})
	}

	for _, row := range rows {
		if row.Filename == "" || row.Title == "" {
			warn(row.Line, "filename and title are recommended")
		}
		if row.Date != "" && !validDate(row.Date) {
			warn(row.Line, "date %q is not a recognised date; kept as-is", row.Date)
		}

		photo := Photo{
			Title:       row.Title,
			Description: row.Description,
			Date:        row.Date,
			Location:    row.Location,
		}
		if prefix != "" {
			photo.Src = repeatedSlash.ReplaceAllString(prefix+row.Filename, "/")
			if opts.FS != nil {
				disk := path.Join(opts.PublicDir, photo.Src)
				if ok, err := afero.Exists(opts.FS, disk); err == nil && !ok {
					warn(row.Line, "image not found at %s (expected %s)", photo.Src, disk)
				}
			}
		}
		photos = append(photos, photo)
	}
	return photos, warnings
}

func normalizePrefix(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

func validDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// Encode renders photos as a two-space indented JSON array followed by a
// newline.
func Encode(photos []Photo) ([]byte, error) {
	if photos == nil {
		photos = []Photo{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(photos); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes photos to filePath, creating its directory.
func Write(fsys afero.Fs, filePath string, photos []Photo) error {
	data, err := Encode(photos)
	if err != nil {
		return fmt.Errorf("encoding portfolio: %w", err)
	}
	if err := fsys.MkdirAll(path.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", filePath, err)
	}
	if err := afero.WriteFile(fsys, filePath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filePath, err)
	}
	return nil
}
