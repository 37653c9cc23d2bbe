// package formatter renders play-count records and run results as CSV and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/records"
	"github.com/desertthunder/playsync/internal/shared"
)

// RecordsToCSV converts records to the export format read by [records.Parse].
//
// When withOriginal is set an "Original Play Count" column follows the play count.
func RecordsToCSV(recs []models.PlayTargetRecord, withOriginal bool) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{records.ColumnPlayCount}
	if withOriginal {
		headers = append(headers, records.ColumnOriginalCount)
	}
	headers = append(headers, records.ColumnTrack, records.ColumnArtist, records.ColumnAlbum, records.ColumnSourceID)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range recs {
		row := []string{strconv.Itoa(rec.PlayCount)}
		if withOriginal {
			row = append(row, strconv.Itoa(rec.RequestedCount))
		}
		row = append(row, rec.Title, rec.Artist, rec.Album, rec.SourceID)

		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WritePreparedCSV writes a prepared record set to path.
func WritePreparedCSV(res records.PrepareResult, path string) error {
	if len(res.Records) == 0 {
		return fmt.Errorf("%w: no records to write", shared.ErrInvalidInput)
	}

	data, err := RecordsToCSV(res.Records, res.HasOriginalCol)
	if err != nil {
		return fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}

	return nil
}

// TopTracksReport lists the first count records as "N. Title by Artist - X plays".
//
// Records are expected to be sorted already (see [records.SortByPlayCount]).
func TopTracksReport(recs []models.PlayTargetRecord, count int) []byte {
	if count <= 0 || count > len(recs) {
		count = len(recs)
	}

	var buf bytes.Buffer
	title := fmt.Sprintf("TOP %d TRACKS BY PLAY COUNT", count)
	fmt.Fprintf(&buf, "%s\n%s\n\n", title, repeat('=', len(title)))

	for i, rec := range recs[:count] {
		fmt.Fprintf(&buf, "%d. %s by %s - %d plays\n", i+1, rec.Title, rec.Artist, rec.RequestedCount)
	}

	return buf.Bytes()
}

// WriteTopTracksReport writes [TopTracksReport] to path.
func WriteTopTracksReport(recs []models.PlayTargetRecord, count int, path string) error {
	if err := os.WriteFile(path, TopTracksReport(recs, count), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// RunSummary renders the final statistics of a replay run.
func RunSummary(stats models.RunStatistics) string {
	var buf bytes.Buffer
	if stats.Stopped {
		buf.WriteString("Play count update stopped early.\n\n")
	} else {
		buf.WriteString("Play count update complete!\n\n")
	}
	fmt.Fprintf(&buf, "Tracks processed: %d/%d\n", stats.TracksProcessed, stats.TotalRecords)
	fmt.Fprintf(&buf, "Plays added: %d\n", stats.PlaysAdded)
	fmt.Fprintf(&buf, "Tracks not found: %d\n", stats.TracksNotFound)
	fmt.Fprintf(&buf, "Tracks skipped: %d\n", stats.TracksSkipped)
	fmt.Fprintf(&buf, "Elapsed: %s\n", shared.FormatElapsed(stats.Elapsed()))
	return buf.String()
}

// PrepareSummary renders the totals of a prepare run.
func PrepareSummary(res records.PrepareResult, estimate string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Original total plays: %d\n", res.OriginalPlays)
	fmt.Fprintf(&buf, "Prepared total plays: %d\n", res.PreparedPlays)
	fmt.Fprintf(&buf, "Reduction: %d plays (%.1f%%)\n", res.OriginalPlays-res.PreparedPlays, res.Reduction())
	fmt.Fprintf(&buf, "Estimated automation time: %s\n", estimate)
	return buf.String()
}

func repeat(ch byte, n int) string {
	return string(bytes.Repeat([]byte{ch}, n))
}
