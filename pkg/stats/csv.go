package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteIntensityCSV writes intensity statistics as CSV with a header row.
func WriteIntensityCSV(w io.Writer, rows []IntensityStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "region", "voxels", "mean", "stddev", "median", "min", "max"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Label),
			r.Name,
			strconv.Itoa(r.Count),
			formatStat(r.Mean),
			formatStat(r.StdDev),
			formatStat(r.Median),
			formatStat(r.Min),
			formatStat(r.Max),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row for label %d: %w", r.Label, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteShapeCSV writes shape statistics as CSV with a header row.
func WriteShapeCSV(w io.Writer, rows []ShapeStats) error {
	cw := csv.NewWriter(w)
	header := []string{"label", "region", "volume_ml", "centroid_x", "centroid_y", "centroid_z", "elongation", "flatness"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Label),
			r.Name,
			formatStat(r.VolumeML),
			formatStat(r.Centroid[0]),
			formatStat(r.Centroid[1]),
			formatStat(r.Centroid[2]),
			formatStat(r.Elongation),
			formatStat(r.Flatness),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row for label %d: %w", r.Label, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
