package taxonomy_test

import (
	"os"
	"path/filepath"
	"testing"

	"autodiag/internal/taxonomy"
)

func TestNewNormalizesAndPreservesDeclarationOrder(t *testing.T) {
	table, err := taxonomy.New([]string{"  Timing   Chain ", "water pump", "CV joint"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("Len: got %d want 3", table.Len())
	}
	phrases := table.Phrases()
	if phrases[0] != "timing chain" || phrases[1] != "water pump" || phrases[2] != "cv joint" {
		t.Fatalf("unexpected phrases: %v", phrases)
	}
	if idx := table.DeclarationIndex("Timing Chain"); idx != 0 {
		t.Fatalf("DeclarationIndex: got %d want 0", idx)
	}
	if idx := table.DeclarationIndex("head gasket"); idx != -1 {
		t.Fatalf("DeclarationIndex for unknown phrase: got %d want -1", idx)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		phrases []string
	}{
		{name: "empty set", phrases: nil},
		{name: "empty keyword", phrases: []string{"timing chain", "   "}},
		{name: "duplicate after normalization", phrases: []string{"Timing Chain", "timing  chain"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := taxonomy.New(tc.phrases); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestScanOrderLongestFirstWithStableTies(t *testing.T) {
	table, err := taxonomy.New([]string{"belt", "timing chain tensioner", "timing chain", "pump", "bolt"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	order := table.ScanOrder()
	if order[0] != "timing chain tensioner" {
		t.Fatalf("longest phrase must scan first, got %q", order[0])
	}
	if order[1] != "timing chain" {
		t.Fatalf("second longest must scan second, got %q", order[1])
	}
	// belt, pump, bolt all have length 4; declaration order breaks the tie.
	if order[2] != "belt" || order[3] != "pump" || order[4] != "bolt" {
		t.Fatalf("equal-length phrases must keep declaration order: %v", order[2:])
	}
}

func TestDefaultTaxonomyIsUsable(t *testing.T) {
	table := taxonomy.Default()
	if table.Len() == 0 {
		t.Fatal("default taxonomy is empty")
	}
	if table.DeclarationIndex("timing chain") < 0 {
		t.Fatal("default taxonomy missing timing chain")
	}
	order := table.ScanOrder()
	for i := 1; i < len(order); i++ {
		if len(order[i]) > len(order[i-1]) {
			t.Fatalf("scan order not longest-first at %d: %q after %q", i, order[i], order[i-1])
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.toml")
	content := "keywords = [\"wheel bearing\", \"brake rotor\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write taxonomy file: %v", err)
	}

	table, err := taxonomy.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len: got %d want 2", table.Len())
	}
	if table.DeclarationIndex("wheel bearing") != 0 {
		t.Fatal("expected wheel bearing at declaration index 0")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := taxonomy.Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Timing   CHAIN  ", "timing chain"},
		{"water\tpump", "water pump"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range tests {
		if got := taxonomy.Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q): got %q want %q", tc.in, got, tc.want)
		}
	}
}
