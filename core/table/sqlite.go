package table

import (
	"database/sql"
	"fmt"
	"strings"
)

// sqliteQuery reads the dataset rows in canonical sort order. The BSB
// tables database mirrors the TSV column set; rowid keeps ties stable.
const sqliteQuery = `
SELECT rowid, heb_sort, grk_sort, bsb_sort, language, verse_id,
       hdg, crossref, par, reftext, bsb_version, pnc, pnc2, footnotes, end_text
FROM bsb_tables
ORDER BY bsb_sort, rowid`

// IngestSQLite ingests the dataset from a SQLite database file. The driver
// is pure Go by default; build with -tags cgo_sqlite for the CGO driver.
func IngestSQLite(path string, opts Options) (map[string][]Fragment, *Report, error) {
	db, err := sql.Open(sqlDriverName, path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset db %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(sqliteQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("query dataset db %s: %w", path, err)
	}
	defer rows.Close()

	b := newBuilder(opts)
	line := 0
	for rows.Next() {
		var (
			rowid                  int64
			heb, grk, bsb          sql.NullInt64
			lang, verseID          sql.NullString
			hdg, crossref, par     sql.NullString
			reftext, text, pnc     sql.NullString
			pnc2, notes, endText   sql.NullString
		)
		if err := rows.Scan(&rowid, &heb, &grk, &bsb, &lang, &verseID,
			&hdg, &crossref, &par, &reftext, &text, &pnc, &pnc2, &notes, &endText); err != nil {
			return nil, nil, fmt.Errorf("scan dataset db row: %w", err)
		}
		line++
		b.addRow(SourceRow{
			Line:      line,
			HebSort:   nullSort(heb),
			GrkSort:   nullSort(grk),
			BSBSort:   nullSort(bsb),
			VerseID:   strings.TrimSpace(verseID.String),
			Language:  strings.TrimSpace(lang.String),
			Heading:   hdg.String,
			CrossRefs: crossref.String,
			Par:       par.String,
			RefText:   reftext.String,
			Text:      text.String,
			PNC:       pnc.String,
			PNC2:      pnc2.String,
			Footnotes: notes.String,
			EndText:   endText.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read dataset db %s: %w", path, err)
	}
	return b.finish()
}

func nullSort(n sql.NullInt64) int {
	if !n.Valid || n.Int64 < 0 {
		return -1
	}
	return int(n.Int64)
}
