package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/san-kum/panelflutter/internal/flutter"
)

// XLSX writes a workbook with a Summary sheet and a Curves sheet holding
// frequency and damping per mode. Failed roots are empty cells.
func XLSX(path string, res *flutter.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"backend", res.Backend},
		{"status", res.Status.String()},
		{"mach", res.Flow.Mach},
		{"altitude (m)", res.Flow.Altitude},
	}
	if res.Found() {
		rows = append(rows,
			[]interface{}{"flutter speed (m/s)", res.Velocity},
			[]interface{}{"flutter frequency (Hz)", res.Frequency},
			[]interface{}{"critical mode", res.Mode + 1},
		)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return err
		}
	}

	const curves = "Curves"
	if _, err := f.NewSheet(curves); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(curves)
	if err != nil {
		return err
	}

	modes := res.Modes()
	header := []interface{}{"velocity (m/s)", "q (Pa)"}
	for m := 1; m <= modes; m++ {
		header = append(header, fmt.Sprintf("f%d (Hz)", m), fmt.Sprintf("g%d", m))
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, p := range res.Points {
		row := []interface{}{p.Velocity, p.DynamicPressure}
		for m := 0; m < modes; m++ {
			if m >= len(p.Roots) {
				row = append(row, nil, nil)
				continue
			}
			row = append(row, cellValue(p.Roots[m].Frequency), cellValue(p.Roots[m].Damping))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func cellValue(x float64) interface{} {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return x
}
