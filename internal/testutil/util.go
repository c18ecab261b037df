// Package testutil holds helpers shared by package tests: golden-file
// comparison and relative float tolerance.
package testutil

import (
	"bytes"
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// Update rewrites golden files instead of comparing against them:
//
//	go test ./... -update
var Update = flag.Bool("update", false, "update golden files")

// CompareWithGolden checks actual against testdata/<name>.golden.
func CompareWithGolden(t *testing.T, name string, actual []byte) {
	t.Helper()
	path := filepath.Join("testdata", name+".golden")

	if *Update {
		if err := os.WriteFile(path, actual, 0644); err != nil {
			t.Fatalf("failed to write golden file: %v", err)
		}
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file: %v", err)
	}
	if !bytes.Equal(expected, actual) {
		t.Fatalf("golden mismatch for %s\nexpected:\n%s\nactual:\n%s", name, expected, actual)
	}
}

// RelClose reports whether a and b agree to tol relative to the larger
// magnitude, with an absolute floor of tol near zero.
func RelClose(a, b, tol float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
