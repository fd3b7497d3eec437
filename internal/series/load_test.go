package series

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.csv")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, `time,center_impurity,edge_impurity,turbulence
0.000000,2.000000e17,8.000000e17,4.0000
0.100000,2.100000e17,8.100000e17,12.0000
0.200000,2.200000e17,8.200000e17,4.0000
`)

	run, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if run.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", run.Len())
	}
	if run.Time[1] != 0.1 {
		t.Errorf("Time[1] = %g, want 0.1", run.Time[1])
	}
	if run.CenterImpurity[0] != 2e17 {
		t.Errorf("CenterImpurity[0] = %g, want 2e17", run.CenterImpurity[0])
	}
	if run.Turbulence[1] != 12.0 {
		t.Errorf("Turbulence[1] = %g, want 12.0", run.Turbulence[1])
	}
}

func TestLoadCSVColumnOrderIndependent(t *testing.T) {
	path := writeCSV(t, `turbulence,time,edge_impurity,center_impurity
4.0,0.0,8.0e17,2.0e17
5.0,1.0,8.1e17,2.1e17
`)

	run, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if run.Turbulence[1] != 5.0 {
		t.Errorf("Turbulence[1] = %g, want 5.0", run.Turbulence[1])
	}
	if run.CenterImpurity[0] != 2e17 {
		t.Errorf("CenterImpurity[0] = %g, want 2e17", run.CenterImpurity[0])
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := writeCSV(t, `time,center_impurity,edge_impurity
0.0,2.0e17,8.0e17
1.0,2.1e17,8.1e17
`)

	_, err := LoadCSV(path)
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("error = %v, want ErrMissingColumn", err)
	}
}

func TestLoadCSVEmptyTable(t *testing.T) {
	path := writeCSV(t, "time,center_impurity,edge_impurity,turbulence\n")
	if _, err := LoadCSV(path); err == nil {
		t.Error("expected error for table with no rows")
	}
}

func TestLoadCSVNonMonotonicTime(t *testing.T) {
	path := writeCSV(t, `time,center_impurity,edge_impurity,turbulence
0.0,2.0e17,8.0e17,4.0
0.0,2.1e17,8.1e17,4.0
`)

	_, err := LoadCSV(path)
	if !errors.Is(err, ErrNonMonotonicTime) {
		t.Errorf("error = %v, want ErrNonMonotonicTime", err)
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
