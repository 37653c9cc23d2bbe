package records

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/shared"
)

// DefaultMaxPlays is the clamp applied when [Options.MaxPlays] is not set.
const DefaultMaxPlays = 1000

// Column names written by the exporter.
const (
	ColumnPlayCount     = "Play Count"
	ColumnOriginalCount = "Original Play Count"
	ColumnTrack         = "Track"
	ColumnArtist        = "Artist"
	ColumnAlbum         = "Album"
	ColumnSourceID      = "Spotify URI"
)

type field int

const (
	fieldUnknown field = iota
	fieldCount
	fieldTitle
	fieldArtist
	fieldAlbum
	fieldSource
)

// Header aliases, compared after [shared.Fold].
var headerAliases = map[string]field{
	"play count":  fieldCount,
	"plays":       fieldCount,
	"count":       fieldCount,
	"track":       fieldTitle,
	"title":       fieldTitle,
	"name":        fieldTitle,
	"artist":      fieldArtist,
	"album":       fieldAlbum,
	"spotify uri": fieldSource,
	"uri":         fieldSource,
	"source":      fieldSource,
}

// positional layout used when the header names none of the known columns
var defaultLayout = []field{fieldCount, fieldTitle, fieldArtist, fieldAlbum, fieldSource}

// Options controls parsing.
type Options struct {
	MaxPlays int // Upper clamp for play counts; DefaultMaxPlays when <= 0
}

// ReadFile parses the export at path.
//
// A missing or unreadable file yields a nil slice and an error wrapping [shared.ErrNoInput].
func ReadFile(path string, opts Options) ([]models.PlayTargetRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: file not found: %s", shared.ErrNoInput, path)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrNoInput, err)
	}
	defer f.Close()

	recs, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNoInput, err)
	}
	return recs, nil
}

// Parse reads a header line followed by data lines. Blank lines are ignored and
// lines have no length limit.
func Parse(r io.Reader, opts Options) ([]models.PlayTargetRecord, error) {
	maxPlays := opts.MaxPlays
	if maxPlays <= 0 {
		maxPlays = DefaultMaxPlays
	}

	reader := bufio.NewReader(r)

	var (
		layout  []field
		records []models.PlayTargetRecord
		lineNo  int
	)

	for {
		text, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		if text == "" && err != nil {
			break
		}

		lineNo++
		line := strings.TrimRight(text, "\r\n")
		switch {
		case lineNo == 1:
			line = strings.TrimPrefix(line, "\ufeff")
			layout = headerLayout(SplitFields(line))
		case strings.TrimSpace(line) != "":
			rec := buildRecord(layout, SplitFields(line), maxPlays)
			rec.Line = lineNo
			records = append(records, rec)
		}

		if err != nil {
			break
		}
	}

	return records, nil
}

// SplitFields splits one line on commas that are outside double quotes, then
// strips one layer of surrounding quotes from each field.
func SplitFields(line string) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
	)

	for _, ch := range line {
		switch {
		case ch == '"':
			quoted = !quoted
			current.WriteRune(ch)
		case ch == ',' && !quoted:
			fields = append(fields, unquote(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, unquote(current.String()))

	return fields
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, `""`, `"`)
}

func headerLayout(names []string) []field {
	layout := make([]field, len(names))
	known := false
	for i, name := range names {
		if f, ok := headerAliases[shared.Fold(name)]; ok {
			layout[i] = f
			known = true
		}
	}
	if !known {
		return defaultLayout
	}
	return layout
}

func buildRecord(layout []field, values []string, maxPlays int) models.PlayTargetRecord {
	var rec models.PlayTargetRecord
	for i := 0; i < len(layout) && i < len(values); i++ {
		switch layout[i] {
		case fieldCount:
			rec.RawCount = values[i]
		case fieldTitle:
			rec.Title = values[i]
		case fieldArtist:
			rec.Artist = values[i]
		case fieldAlbum:
			rec.Album = values[i]
		case fieldSource:
			rec.SourceID = values[i]
		}
	}

	count, err := strconv.Atoi(strings.TrimSpace(rec.RawCount))
	if err != nil || count <= 0 {
		rec.Skip = true
		if err == nil {
			rec.RequestedCount = count
		}
		return rec
	}

	rec.RequestedCount = count
	rec.PlayCount = min(count, maxPlays)
	return rec
}
