package include

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/juev/hledger-autobudget/internal/testutil"
)

var (
	smallJournal = testutil.GenerateJournal(10)
	largeJournal = testutil.GenerateJournal(1000)
)

func setupSingleFile(b *testing.B, content string) string {
	b.Helper()
	path := filepath.Join(b.TempDir(), "test.journal")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		b.Fatal(err)
	}
	return path
}

func BenchmarkLoader_Load_Small(b *testing.B) {
	path := setupSingleFile(b, smallJournal)
	loader := NewLoader()

	b.ResetTimer()
	for b.Loop() {
		loader.Load(path)
	}
}

func BenchmarkLoader_Load_Large(b *testing.B) {
	path := setupSingleFile(b, largeJournal)
	loader := NewLoader()

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		loader.Load(path)
	}
}

func BenchmarkLoader_LoadFromContent_Large(b *testing.B) {
	loader := NewLoader()

	for b.Loop() {
		loader.LoadFromContent("test.journal", largeJournal)
	}
}

func BenchmarkLoader_Load_IncludeTree_20Files(b *testing.B) {
	mainPath, err := testutil.GenerateIncludeTree(b.TempDir(), 20, 20)
	if err != nil {
		b.Fatal(err)
	}
	loader := NewLoader()

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		loader.Load(mainPath)
	}
}
