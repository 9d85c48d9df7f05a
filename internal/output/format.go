package output

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/flab03/ymatch-analysis/internal/matcher"
)

// Format selects how result sets are written.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	}
	return "", eris.Errorf("unknown output format %q (want table, csv or json)", s)
}

// WriteFriends writes friend rows to w in format f.
func WriteFriends(w io.Writer, rows []matcher.FriendRow, f Format) error {
	switch f {
	case FormatCSV:
		return writeFriendCSV(w, rows)
	case FormatJSON:
		return writeJSON(w, rows)
	default:
		_, err := io.WriteString(w, RenderFriendTable(rows))
		return err
	}
}

// WriteBusinesses writes business rows to w in format f.
func WriteBusinesses(w io.Writer, rows []matcher.BusinessRow, f Format) error {
	switch f {
	case FormatCSV:
		return writeBusinessCSV(w, rows)
	case FormatJSON:
		return writeJSON(w, rows)
	default:
		_, err := io.WriteString(w, RenderBusinessTable(rows))
		return err
	}
}

func writeJSON[T any](w io.Writer, rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return eris.Wrap(err, "output: encode json")
	}
	return nil
}

// fixed formats like C's %f: six decimals, no exponent.
type fixed float64

func (f fixed) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "%f", float64(f)), nil
}

// tenth formats with one decimal, as star ratings are shown.
type tenth float64

func (f tenth) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "%.1f", float64(f)), nil
}
