// Package report exports aggregated sweep results for downstream
// analysis: an xlsx workbook with one sheet per metric, and a flat CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"debench/app"
	"debench/domain/simul"
	"debench/internal/errors"
)

// WriteWorkbook writes one sheet per metric. Rows are conditions,
// columns are methods, cells hold the metric value averaged over
// replicates.
func WriteWorkbook(path string, results []app.Result, methods []string, kinds []simul.MetricKind) error {
	f := excelize.NewFile()
	defer f.Close()

	byMetric := lo.GroupBy(results, func(r app.Result) simul.MetricKind { return r.Metric })
	for _, kind := range kinds {
		sheet := string(kind)
		if _, err := f.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "creating sheet %s", sheet)
		}
		if err := writeSheet(f, sheet, byMetric[kind], methods); err != nil {
			return err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrap(err, "removing default sheet")
	}
	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "saving report %s", path)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, results []app.Result, methods []string) error {
	if err := f.SetCellValue(sheet, "A1", "condition"); err != nil {
		return errors.Wrapf(err, "writing sheet %s", sheet)
	}
	for i, method := range methods {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		if err := f.SetCellValue(sheet, cell, method); err != nil {
			return errors.Wrapf(err, "writing sheet %s", sheet)
		}
	}

	byCondition := lo.GroupBy(results, func(r app.Result) string { return r.Condition.String() })
	conditions := lo.Keys(byCondition)
	sort.Strings(conditions)

	for row, cond := range conditions {
		cell, _ := excelize.CoordinatesToCellName(1, row+2)
		if err := f.SetCellValue(sheet, cell, cond); err != nil {
			return errors.Wrapf(err, "writing sheet %s", sheet)
		}
		byMethod := lo.GroupBy(byCondition[cond], func(r app.Result) string { return r.Method })
		for col, method := range methods {
			rows, ok := byMethod[method]
			if !ok {
				continue
			}
			values := lo.Map(rows, func(r app.Result, _ int) float64 { return r.Value })
			mean, err := stats.Mean(values)
			if err != nil {
				return errors.Wrapf(err, "aggregating %s/%s", cond, method)
			}
			cell, _ := excelize.CoordinatesToCellName(col+2, row+2)
			if err := f.SetCellValue(sheet, cell, mean); err != nil {
				return errors.Wrapf(err, "writing sheet %s", sheet)
			}
		}
	}
	return nil
}

// WriteCSV writes every individual result as one flat row.
func WriteCSV(path string, results []app.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating report %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"dataset", "disp_mode", "frac_up", "nsample", "outlier_mode", "pde", "method", "metric", "seed", "value"}
	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, "writing report %s", path)
	}
	for _, r := range results {
		row := []string{
			r.Condition.Dataset.String(),
			r.Condition.DispMode.String(),
			fmt.Sprintf("%g", r.Condition.FracUp),
			strconv.Itoa(r.Condition.NSample),
			r.Condition.OutlierMode.String(),
			fmt.Sprintf("%g", r.Condition.PDE),
			r.Method,
			r.Metric.String(),
			strconv.FormatInt(r.Seed, 10),
			strconv.FormatFloat(r.Value, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "writing report %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "writing report %s", path)
	}
	return f.Close()
}
