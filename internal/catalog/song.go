// Package catalog joins the decoded textage datasets into one song record per
// title entry and stores the result in SQLite.
package catalog

import (
	"sort"

	"github.com/papapumpkin/textage/internal/decode"
)

// Title row positions in titletbl.
const (
	colVersion = iota
	colNumericID
	colFlag
	colGenre
	colArtist
	colTitle
	colSubtitle
)

// Song is one catalog entry.
type Song struct {
	ID        string // textage id, e.g. "_5kei"
	NumericID int
	Title     string
	Subtitle  string
	Artist    string
	Genre     string
	VersionID int    // index into the version list after resolving -1
	Version   string // "" when VersionID is out of range
	Levels    []Level
}

// Level is one charted difficulty slot from actbl.
type Level struct {
	Slot  int
	Value int
}

// Build joins titles with their versions and levels. Songs with no
// difficulty row get no levels; uncharted slots (-1) are dropped. The result
// is sorted by ID.
func Build(diffs decode.Difficulties, versions decode.Versions, titles decode.Titles) []Song {
	songs := make([]Song, 0, len(titles))
	for id, row := range titles {
		s := Song{
			ID:       id,
			Genre:    text(row, colGenre),
			Artist:   text(row, colArtist),
			Title:    text(row, colTitle),
			Subtitle: text(row, colSubtitle),
		}
		s.NumericID, _ = decode.Field(row, colNumericID).Number()
		s.VersionID, s.Version = resolveVersion(decode.Field(row, colVersion), versions)

		for slot, v := range diffs[id] {
			if v < 0 {
				continue
			}
			s.Levels = append(s.Levels, Level{Slot: slot, Value: v})
		}
		songs = append(songs, s)
	}
	sort.Slice(songs, func(i, j int) bool { return songs[i].ID < songs[j].ID })
	return songs
}

// resolveVersion maps a title's version field to an index into versions.
// Negative values count from the end of the list, so the substream marker -1
// lands on the last entry.
func resolveVersion(f decode.TitleField, versions decode.Versions) (int, string) {
	n, ok := f.Number()
	if !ok {
		return -1, ""
	}
	if n < 0 {
		n += len(versions)
	}
	if n < 0 || n >= len(versions) {
		return n, ""
	}
	return n, versions[n]
}

// text returns column i for display; numbers are formatted and missing
// columns are empty.
func text(row []decode.TitleField, i int) string {
	return decode.Field(row, i).String()
}
