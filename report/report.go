// report/report.go
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dalemusser/emailcheck/validate"
	"gopkg.in/yaml.v3"
)

// Common errors.
var (
	ErrUnknownFormat = errors.New("report: unknown format")
	ErrNoRows        = errors.New("report: no rows to write")
)

// Format names an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatCSV, FormatXLSX}

// ParseFormat resolves a format name, case-insensitively. "yml" and "excel"
// are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatCSV, FormatXLSX:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Row is one validated candidate.
type Row struct {
	Email   string        `json:"email" yaml:"email"`
	Valid   bool          `json:"valid" yaml:"valid"`
	Message string        `json:"message" yaml:"message"`
	Rule    validate.Rule `json:"rule" yaml:"rule"`
}

// NewRow pairs a candidate with its result.
func NewRow(email string, res validate.Result) Row {
	return Row{Email: email, Valid: res.Valid, Message: res.Message, Rule: res.Rule}
}

// Summary counts the valid and invalid rows.
func Summary(rows []Row) (valid, invalid int) {
	for _, r := range rows {
		if r.Valid {
			valid++
		} else {
			invalid++
		}
	}
	return valid, invalid
}

// Write renders rows to w in the given format.
func Write(w io.Writer, format Format, rows []Row) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	switch format {
	case FormatText:
		return writeText(w, rows)
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatYAML:
		return writeYAML(w, rows)
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatXLSX:
		return writeXLSX(w, rows)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
}

// writeText prints each row the way the demo does:
//
//	Testing: <email>
//	Result: Valid|Invalid
//	Message: <message>
func writeText(w io.Writer, rows []Row) error {
	for _, r := range rows {
		verdict := "Invalid"
		if r.Valid {
			verdict = "Valid"
		}
		if _, err := fmt.Fprintf(w, "\nTesting: %s\nResult: %s\nMessage: %s\n", r.Email, verdict, r.Message); err != nil {
			return err
		}
	}
	return nil
}

type document struct {
	Results []Row `json:"results" yaml:"results"`
	Valid   int   `json:"valid" yaml:"valid"`
	Invalid int   `json:"invalid" yaml:"invalid"`
}

func newDocument(rows []Row) document {
	valid, invalid := Summary(rows)
	return document{Results: rows, Valid: valid, Invalid: invalid}
}

func writeJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(rows))
}

func writeYAML(w io.Writer, rows []Row) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(rows)); err != nil {
		return err
	}
	return enc.Close()
}

// csvHeader is the header row of the CSV and XLSX outputs.
var csvHeader = []string{"email", "valid", "rule", "message"}

func writeCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Email, strconv.FormatBool(r.Valid), string(r.Rule), r.Message}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
