// Package testutil provides golden file helpers for tests
package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/kotleni/cats/internal/osutil"
)

// GoldenTest produces output to compare against a named golden file.
type GoldenTest interface {
	Output() ([]byte, string)
}

// CompareGoldenFile verifies that the output of an operation matches
// the expected output. Run with -update to regenerate.
func CompareGoldenFile(t *testing.T, tc GoldenTest) {
	t.Helper()

	if runtime.GOOS == osutil.Windows {
		// TODO: normalize CRLF line endings before comparing
		t.Skip("skipping golden file test in Windows")
	}

	g := goldie.New(
		t,
		goldie.WithFixtureDir("testdata"),
	)

	output, golden := tc.Output()

	if output == nil {
		f := filepath.Join("testdata", golden+".golden")
		if _, err := os.Stat(f); err == nil || errors.Is(err, os.ErrExist) {
			t.Fatalf("expected no output, but golden file exists: %s", f)
		}

		return
	}

	g.Assert(t, golden, output)
}

// Output adapts a fixed byte slice to GoldenTest.
type Output struct {
	Name string
	Data []byte
}

func (o Output) Output() ([]byte, string) {
	return o.Data, o.Name
}
