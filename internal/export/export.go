// Package export serializes discovery results: a flattened CSV or XLSX
// summary table, or a full JSON dump including scores and rationales.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/discovery-cli/internal/model"
)

// summaryHeader is the flattened column set shared by CSV and XLSX.
var summaryHeader = []string{
	"Rank", "Company Name", "Website", "Match Score",
	"Size", "Locations", "Description",
}

// summaryRow flattens one company at the given 1-based rank.
func summaryRow(rank int, company model.CompanyInfo) []string {
	// 0.0 is a valid overall score; only an absent MatchScore leaves
	// the cell blank.
	score := ""
	if company.MatchScore != nil {
		score = fmt.Sprintf("%.1f", company.MatchScore.OverallScore)
	}
	return []string{
		strconv.Itoa(rank),
		company.Name,
		company.Website,
		score,
		company.SizeEstimate,
		strings.Join(company.Locations, ", "),
		company.Description,
	}
}

// WriteCSV writes the summary table as CSV.
func WriteCSV(w io.Writer, result model.DiscoveryResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return eris.Wrap(err, "export: writing csv header")
	}
	for i, company := range result.Companies {
		if err := cw.Write(summaryRow(i+1, company)); err != nil {
			return eris.Wrapf(err, "export: writing csv row %d", i+1)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flushing csv")
	}
	return nil
}

// WriteJSON writes the full result, nested scores and rationales
// included, as indented JSON.
func WriteJSON(w io.Writer, result model.DiscoveryResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return eris.Wrap(err, "export: encoding json")
	}
	return nil
}

// WriteXLSX writes the summary table as a single-sheet workbook.
func WriteXLSX(w io.Writer, result model.DiscoveryResult) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Results")
	if err != nil {
		return eris.Wrap(err, "export: adding xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range summaryHeader {
		header.AddCell().SetString(col)
	}
	for i, company := range result.Companies {
		row := sheet.AddRow()
		for _, val := range summaryRow(i+1, company) {
			row.AddCell().SetString(val)
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: writing xlsx")
	}
	return nil
}

// Save writes the result to path, picking the format from the file
// extension: .csv, .json, or .xlsx.
func Save(path string, result model.DiscoveryResult) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: creating %s", path)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		err = WriteCSV(f, result)
	case ".json":
		err = WriteJSON(f, result)
	case ".xlsx":
		err = WriteXLSX(f, result)
	default:
		return eris.Errorf("export: unsupported format %q (use .csv, .json, or .xlsx)", ext)
	}
	if err != nil {
		return err
	}

	zap.L().Info("results exported",
		zap.String("path", path),
		zap.Int("companies", len(result.Companies)),
	)
	return f.Close()
}
