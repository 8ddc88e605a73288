// Package filetest provides golden-file comparison helpers for the
// compiler's disassembly/error-message tests: feed it a directory of
// ".push" script fixtures, get back each one's os.FileInfo, and diff
// whatever your test produced against a ".want"/".err" file sitting next
// to it. Grounded on mna-nenuphar/internal/filetest/filetest.go's
// SourceFiles/DiffOutput/DiffErrors/DiffCustom shape, adapted to this
// repository's one-statement-per-line script fixtures instead of whole
// source-file parse/resolve dumps.
package filetest

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/diff"
)

var updateGoldenFiles = flag.Bool("test.update-golden", false, "If set, overwrites every golden file with the test's actual output instead of comparing against it.")

// SourceFiles returns the os.FileInfo of every regular file in dir whose
// extension matches ext (a leading "." is added if missing; an empty ext
// matches every regular file).
func SourceFiles(t *testing.T, dir, ext string) []os.FileInfo {
	t.Helper()

	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}

	dents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	res := make([]os.FileInfo, 0, len(dents))
	for _, dent := range dents {
		if !dent.Type().IsRegular() {
			continue
		}
		if ext != "" && filepath.Ext(dent.Name()) != ext {
			continue
		}
		fi, err := dent.Info()
		if err != nil {
			t.Fatal(err)
		}
		res = append(res, fi)
	}
	return res
}

// DiffOutput compares output (e.g. a disassembly listing) against the
// ".want" golden file for fixture fi in resultDir.
func DiffOutput(t *testing.T, fi os.FileInfo, output, resultDir string) {
	t.Helper()
	DiffCustom(t, fi, "output", ".want", output, resultDir)
}

// DiffErrors compares output (e.g. a rendered CompileError) against the
// ".err" golden file for fixture fi in resultDir.
func DiffErrors(t *testing.T, fi os.FileInfo, output, resultDir string) {
	t.Helper()
	DiffCustom(t, fi, "errors", ".err", output, resultDir)
}

// DiffCustom diffs output against resultDir/fi.Name()+ext, labeling
// mismatches with label in the test failure message. Pass -test.update-golden
// to rewrite the golden file with output instead of comparing.
func DiffCustom(t *testing.T, fi os.FileInfo, label, ext, output, resultDir string) {
	t.Helper()

	wantFile := filepath.Join(resultDir, fi.Name()+ext)
	diffOrUpdate(t, label, wantFile, output)
}

func diffOrUpdate(t *testing.T, label, goldFile, output string) {
	if *updateGoldenFiles {
		if err := os.WriteFile(goldFile, []byte(output), 0o600); err != nil {
			t.Fatal(err)
		}
		return
	}

	wantb, err := os.ReadFile(goldFile)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	want := string(wantb)
	if testing.Verbose() {
		t.Logf("got %s:\n%s\n", label, output)
	}
	if patch := diff.Diff(want, output); patch != "" {
		if testing.Verbose() {
			t.Logf("want %s:\n%s\n", label, want)
		}
		t.Errorf("diff %s:\n%s\n", label, patch)
	}
}
