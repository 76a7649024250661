package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Rana718/riskgen/internal/types"
)

// Artifact names one exported table file.
type Artifact struct {
	Table   string
	File    string
	Columns []string
}

// The six artifacts, in the order they are written.
var (
	LoanMaster  = Artifact{"loan_master", "loan_master_table.csv", types.LoanColumns}
	Customers   = Artifact{"customer_demographics", "customer_demographics.csv", types.CustomerColumns}
	Exposures   = Artifact{"exposure", "exposure_data.csv", types.ExposureColumns}
	Delinquency = Artifact{"default_delinquency", "default_delinquency_data.csv", types.DelinquencyColumns}
	ECL         = Artifact{"ecl", "ecl_table.csv", types.ECLColumns}
	Payments    = Artifact{"payment_history", "payment_history.csv", types.PaymentColumns}

	Artifacts = []Artifact{LoanMaster, Customers, Exposures, Delinquency, ECL, Payments}
)

// ArtifactError reports a failure reading or writing one artifact.
type ArtifactError struct {
	Artifact Artifact
	Path     string
	Err      error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Artifact.Table, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// Result describes a completed export.
type Result struct {
	Dir   string
	Files map[string]string // table name to written path
	Rows  map[string]int
}

// Writer writes datasets as CSV files.
type Writer struct {
	dir         string
	timestamped bool
	now         func() time.Time
}

func NewWriter(dir string, timestamped bool) *Writer {
	return &Writer{dir: dir, timestamped: timestamped, now: time.Now}
}

// Write creates one CSV per table. With timestamping on, files go into a
// fresh export_<timestamp>_csv directory under the output directory.
func (w *Writer) Write(ds types.Dataset) (*Result, error) {
	dirPath := w.dir
	if w.timestamped {
		timestamp := w.now().Format("2006-01-02_15-04-05")
		dirPath = filepath.Join(w.dir, fmt.Sprintf("export_%s_csv", timestamp))
	}

	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	res := &Result{
		Dir:   dirPath,
		Files: make(map[string]string, len(Artifacts)),
		Rows:  make(map[string]int, len(Artifacts)),
	}

	for _, a := range Artifacts {
		rows := records(a, ds)
		path := filepath.Join(dirPath, a.File)
		if err := writeCSV(path, a.Columns, rows); err != nil {
			return res, &ArtifactError{Artifact: a, Path: path, Err: err}
		}
		res.Files[a.Table] = path
		res.Rows[a.Table] = len(rows)
	}

	return res, nil
}

func records(a Artifact, ds types.Dataset) [][]string {
	switch a.Table {
	case LoanMaster.Table:
		return collect(ds.Loans)
	case Customers.Table:
		return collect(ds.Customers)
	case Exposures.Table:
		return collect(ds.Exposures)
	case Delinquency.Table:
		return collect(ds.Delinquencies)
	case ECL.Table:
		return collect(ds.ECLs)
	case Payments.Table:
		return collect(ds.Payments)
	}
	return nil
}

type recorder interface {
	Record() []string
}

func collect[T recorder](rows []T) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

// Existing lists the artifact files already present in dir.
func Existing(dir string) []string {
	var found []string
	for _, a := range Artifacts {
		path := filepath.Join(dir, a.File)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			found = append(found, path)
		}
	}
	return found
}
