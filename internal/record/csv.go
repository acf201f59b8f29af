package record

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/LdDl/ball-tracker/track"
	"github.com/pkg/errors"
)

// CSVHeader is the first line of files written by CSVRecorder
var CSVHeader = []string{"session", "frame", "pred_x", "pred_y", "found", "det_x", "det_y", "radius"}

// CSVRecorder writes ';' separated rows. Detection columns are empty on frames without detection.
type CSVRecorder struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVRecorder creates (or truncates) file and writes header
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't create '%s'", path)
	}
	writer := csv.NewWriter(file)
	writer.Comma = ';'
	if err := writer.Write(CSVHeader); err != nil {
		file.Close()
		return nil, errors.Wrap(err, "Can't write CSV header")
	}
	return &CSVRecorder{
		file:   file,
		writer: writer,
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Record implements Recorder
func (recorder *CSVRecorder) Record(result track.Result) error {
	r := newRow(result)
	line := []string{
		r.session,
		strconv.Itoa(r.frame),
		formatFloat(r.predX),
		formatFloat(r.predY),
		strconv.FormatBool(r.found),
		"", "", "",
	}
	if r.found {
		line[5] = formatFloat(r.detX)
		line[6] = formatFloat(r.detY)
		line[7] = formatFloat(r.radius)
	}
	if err := recorder.writer.Write(line); err != nil {
		return errors.Wrap(err, "Can't write CSV row")
	}
	return nil
}

// Close flushes buffered rows and closes file
func (recorder *CSVRecorder) Close() error {
	recorder.writer.Flush()
	if err := recorder.writer.Error(); err != nil {
		recorder.file.Close()
		return errors.Wrap(err, "Can't flush CSV")
	}
	return recorder.file.Close()
}
