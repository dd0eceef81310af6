// Package excel exports validation results as xlsx workbooks, one sheet
// per section, for offline inspection of sampler captures.
package excel

import (
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"saga/internal/analysis"
	"saga/internal/errors"
)

// Writer renders results into xlsx workbooks.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// RenderUnivariate writes a workbook with a Summary sheet of sample
// statistics and a Histogram sheet listing observed vs expected counts
// over the truncated support.
func (e *Writer) RenderUnivariate(w io.Writer, result *analysis.UnivariateResult) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return errors.Wrap(err, "renaming summary sheet")
	}
	rows := [][]interface{}{
		{"center", result.Center},
		{"sigma", result.Sigma},
		{"n", result.N},
		{"mean", result.Mean},
		{"variance", result.Variance},
		{"std dev", result.StdDev},
		{"skewness", result.Skewness},
		{"excess kurtosis", result.Kurtosis},
		{"chi-square statistic", result.ChiSquare.Statistic},
		{"chi-square p-value", result.ChiSquare.PValue},
		{"buckets", result.Buckets},
		{"outliers", result.Outliers},
		{"valid", result.Valid},
	}
	if err := writeRows(f, summary, rows); err != nil {
		return err
	}

	const histogram = "Histogram"
	if _, err := f.NewSheet(histogram); err != nil {
		return errors.Wrap(err, "creating histogram sheet")
	}
	pdt := result.PDT()
	hist := result.Histogram()
	probs := pdt.Probabilities()
	histRows := make([][]interface{}, 0, len(hist)+1)
	histRows = append(histRows, []interface{}{"z", "observed", "expected"})
	for i, obs := range hist {
		z := pdt.Min() + int64(i)
		histRows = append(histRows, []interface{}{z, obs, math.Round(probs[i] * float64(result.N))})
	}
	if err := writeRows(f, histogram, histRows); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

// RenderMultivariate writes a workbook with a Summary sheet, a Coordinates
// sheet of per-coordinate chi-square outcomes and a Covariance sheet
// holding the normalized covariance matrix.
func (e *Writer) RenderMultivariate(w io.Writer, result *analysis.MultivariateResult) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return errors.Wrap(err, "renaming summary sheet")
	}
	rows := [][]interface{}{
		{"sigma", result.Sigma},
		{"n", result.N},
		{"dim", result.Dim},
		{"gaussian coordinates", result.GaussianCoords},
	}
	if result.DoornikHansen != nil {
		rows = append(rows,
			[]interface{}{"doornik-hansen statistic", result.DoornikHansen.DH},
			[]interface{}{"doornik-hansen p-value", result.DoornikHansen.PO},
			[]interface{}{"doornik-hansen (asymptotic) p-value", result.DoornikHansen.PA},
		)
	}
	if result.DiagCov != nil {
		rows = append(rows,
			[]interface{}{"covariance diagonals statistic", result.DiagCov.Statistic},
			[]interface{}{"covariance diagonals p-value", result.DiagCov.PValue},
		)
	}
	for _, adv := range result.Advisories {
		rows = append(rows, []interface{}{"advisory", adv})
	}
	for _, msg := range result.Errors {
		rows = append(rows, []interface{}{"error", msg})
	}
	if err := writeRows(f, summary, rows); err != nil {
		return err
	}

	const coords = "Coordinates"
	if _, err := f.NewSheet(coords); err != nil {
		return errors.Wrap(err, "creating coordinates sheet")
	}
	coordRows := make([][]interface{}, 0, result.Dim+1)
	coordRows = append(coordRows, []interface{}{"coordinate", "chi-square p-value", "outliers", "valid"})
	for i, uni := range result.Univariates {
		if uni == nil {
			coordRows = append(coordRows, []interface{}{i, "failed", "", ""})
			continue
		}
		coordRows = append(coordRows, []interface{}{i, uni.ChiSquare.PValue, uni.Outliers, uni.Valid})
	}
	if err := writeRows(f, coords, coordRows); err != nil {
		return err
	}

	const covariance = "Covariance"
	if _, err := f.NewSheet(covariance); err != nil {
		return errors.Wrap(err, "creating covariance sheet")
	}
	covRows := make([][]interface{}, len(result.Covariance))
	for i, row := range result.Covariance {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		covRows[i] = cells
	}
	if err := writeRows(f, covariance, covRows); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return errors.Wrap(err, "computing cell name")
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrap(err, "writing cell "+cell)
			}
		}
	}
	return nil
}
