// Package export writes analysis results as a text table, CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/ramonehamilton/oncurve/internal/curve"
)

// Format represents the export format.
type Format string

const (
	// FormatTable is an aligned plain text table.
	FormatTable Format = "table"
	// FormatCSV represents CSV export format.
	FormatCSV Format = "csv"
	// FormatJSON represents JSON export format.
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. The empty string selects FormatTable.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", name)
	}
}

// SpellRow is one exported spell.
type SpellRow struct {
	Name      string  `json:"name"`
	ManaValue int     `json:"cmc"`
	OK        int     `json:"ok"`
	NOK       int     `json:"nok"`
	P1        float64 `json:"p1"`
	P2        float64 `json:"p2"`
}

// Report is the JSON export of a result.
type Report struct {
	RunID        string     `json:"run_id"`
	DeckSize     int        `json:"deck_size"`
	LandCount    int        `json:"land_count"`
	AverageLands float64    `json:"average_lands"`
	Strategy     string     `json:"strategy"`
	Spells       []SpellRow `json:"spells"`
}

var csvHeader = []string{"name", "cmc", "ok", "nok", "p1", "p2"}

// Rows returns one row per spell, ordered by mana value then name.
func Rows(result *curve.Result) []SpellRow {
	sorted := result.Sorted()
	rows := make([]SpellRow, len(sorted))
	for i, s := range sorted {
		rows[i] = SpellRow{Name: s.Name, ManaValue: s.ManaValue, OK: s.OK, NOK: s.NOK, P1: s.P1, P2: s.P2}
	}
	return rows
}

// Write renders result to w in the given format.
func Write(w io.Writer, format Format, result *curve.Result) error {
	switch format {
	case FormatTable, "":
		return writeTable(w, result)
	case FormatCSV:
		return writeCSV(w, Rows(result))
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(Report{
			RunID:        result.RunID,
			DeckSize:     result.DeckSize,
			LandCount:    result.LandCount,
			AverageLands: result.AverageLands,
			Strategy:     result.Strategy,
			Spells:       Rows(result),
		})
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// WriteFile renders result to path, creating parent directories. An
// existing file is only replaced when overwrite is set.
func WriteFile(path string, format Format, result *curve.Result, overwrite bool) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if os.IsExist(err) {
		return fmt.Errorf("file already exists: %s (use overwrite option to replace)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return Write(file, format, result)
}

func writeTable(w io.Writer, r *curve.Result) error {
	fmt.Fprintf(w, "%d cards, %d lands, %.2f lands in opening hand on average (%s)\n\n",
		r.DeckSize, r.LandCount, r.AverageLands, r.Strategy)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Spell\tCMC\tOK\tNOK\tP1 %\tP2 %\t")
	for _, s := range Rows(r) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\t%.2f\t\n", s.Name, s.ManaValue, s.OK, s.NOK, s.P1, s.P2)
	}
	return tw.Flush()
}

func writeCSV(w io.Writer, rows []SpellRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, r := range rows {
		record := []string{
			r.Name,
			strconv.Itoa(r.ManaValue),
			strconv.Itoa(r.OK),
			strconv.Itoa(r.NOK),
			strconv.FormatFloat(r.P1, 'f', 2, 64),
			strconv.FormatFloat(r.P2, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
