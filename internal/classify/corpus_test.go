package classify

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCorpus(t *testing.T) {
	t.Parallel()

	corpus := DefaultCorpus()
	if len(corpus) == 0 {
		t.Fatal("default corpus is empty")
	}
	if err := validateExamples(corpus); err != nil {
		t.Fatalf("default corpus invalid: %v", err)
	}

	var multiLabel, unaligned bool
	for _, ex := range corpus {
		if len(ex.Categories) > 1 {
			multiLabel = true
		}
		if len(ex.Categories) == 0 {
			unaligned = true
		}
	}
	if !multiLabel {
		t.Error("default corpus should carry a multi-label example")
	}
	if !unaligned {
		t.Error("default corpus should carry unaligned examples")
	}
}

func TestLoadCorpus_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corpus.yaml")
	data := `
- text: "sounds good"
  categories: [YES]
- text: "rather not"
  categories: [NO]
- text: "hm"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	examples, err := LoadCorpus(path)
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if len(examples) != 3 {
		t.Fatalf("loaded %d examples, want 3", len(examples))
	}
	if !examples[0].Has(Yes) {
		t.Errorf("examples[0] = %+v, want YES", examples[0])
	}
	if !examples[1].Has(No) {
		t.Errorf("examples[1] = %+v, want NO", examples[1])
	}
	if len(examples[2].Categories) != 0 {
		t.Errorf("examples[2] = %+v, want unaligned", examples[2])
	}
}

func TestLoadCorpus_RejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corpus.yaml")
	data := `
- text: "sounds good"
  categories: [SHRUG]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCorpus(path); err == nil {
		t.Fatal("expected an error for an unknown category")
	}
}

func TestCorpusDB_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "corpus.db")

	db, err := OpenCorpusDB(ctx, path)
	if err != nil {
		t.Fatalf("OpenCorpusDB: %v", err)
	}
	defer func() { _ = db.Close() }()

	inserts := []struct {
		text     string
		category string
	}{
		{"sounds good", "YES"},
		{"rather not", "NO"},
		{"yes but how?", "YES"},
		{"yes but how?", "QUESTION"},
		{"hm", ""},
	}
	for _, in := range inserts {
		if _, err := db.ExecContext(ctx, "INSERT INTO corpus (text, category) VALUES (?, ?)", in.text, in.category); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	examples, err := LoadCorpusDB(ctx, db)
	if err != nil {
		t.Fatalf("LoadCorpusDB: %v", err)
	}
	if len(examples) != 4 {
		t.Fatalf("loaded %d examples, want 4 (multi-label rows merged)", len(examples))
	}

	byText := map[string]Example{}
	for _, ex := range examples {
		byText[ex.Text] = ex
	}
	merged := byText["yes but how?"]
	if !merged.Has(Yes) || !merged.Has(Question) {
		t.Errorf("merged example = %+v, want YES and QUESTION", merged)
	}
	if len(byText["hm"].Categories) != 0 {
		t.Errorf("unaligned example = %+v", byText["hm"])
	}
}
