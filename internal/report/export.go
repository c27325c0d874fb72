package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/panelflutter/internal/aero"
	"github.com/san-kum/panelflutter/internal/flutter"
)

// ExportData is the JSON document. Failed roots export as null.
type ExportData struct {
	Name       string             `json:"name,omitempty"`
	Backend    string             `json:"backend"`
	Status     flutter.Status     `json:"status"`
	Velocity   *float64           `json:"flutter_velocity,omitempty"`
	Frequency  *float64           `json:"flutter_frequency,omitempty"`
	Mode       *int               `json:"critical_mode,omitempty"`
	BelowRange bool               `json:"below_range,omitempty"`
	Flow       aero.FlowCondition `json:"flow"`
	Points     []ExportPoint      `json:"points"`
}

type ExportPoint struct {
	Velocity        float64      `json:"velocity"`
	DynamicPressure float64      `json:"dynamic_pressure"`
	Roots           []ExportRoot `json:"roots"`
	Error           string       `json:"error,omitempty"`
}

type ExportRoot struct {
	Frequency *float64 `json:"frequency"`
	Damping   *float64 `json:"damping"`
	Converged bool     `json:"converged"`
}

func NewExportData(name string, res *flutter.Result) ExportData {
	data := ExportData{
		Name:       name,
		Backend:    res.Backend,
		Status:     res.Status,
		BelowRange: res.BelowRange,
		Flow:       res.Flow,
		Points:     make([]ExportPoint, len(res.Points)),
	}
	if res.Found() {
		v, f, m := res.Velocity, res.Frequency, res.Mode+1
		data.Velocity, data.Frequency, data.Mode = &v, &f, &m
	}
	for i, p := range res.Points {
		ep := ExportPoint{
			Velocity:        p.Velocity,
			DynamicPressure: p.DynamicPressure,
			Roots:           make([]ExportRoot, len(p.Roots)),
		}
		for j, r := range p.Roots {
			ep.Roots[j] = ExportRoot{Frequency: finite(r.Frequency), Damping: finite(r.Damping), Converged: r.Converged}
		}
		if p.Err != nil {
			ep.Error = p.Err.Error()
		}
		data.Points[i] = ep
	}
	return data
}

func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

func JSON(w io.Writer, name string, res *flutter.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(name, res))
}

// CSV writes the V-f and V-g curves in wide form: velocity, then
// frequency and damping per mode.
func CSV(w io.Writer, res *flutter.Result) error {
	v, freq, damp := res.Curves()
	cw := csv.NewWriter(w)

	header := []string{"velocity"}
	for m := range freq {
		header = append(header, fmt.Sprintf("f%d", m+1), fmt.Sprintf("g%d", m+1))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range v {
		row := []string{strconv.FormatFloat(v[i], 'f', 4, 64)}
		for m := range freq {
			row = append(row, strconv.FormatFloat(freq[m][i], 'f', 6, 64), strconv.FormatFloat(damp[m][i], 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
