package scipexport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"scalpel/internal/extract"
	"scalpel/internal/parser"
)

func extractFixture(t *testing.T, path, src string) *extract.FileEntities {
	t.Helper()
	res, err := parser.ParseFile(context.Background(), path, []byte(src))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	t.Cleanup(res.Close)
	fe, err := extract.File(res)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	return fe
}

func TestBuild(t *testing.T) {
	fe := extractFixture(t, "src/app.js", `class Account {
  deposit(n) { return n; }
}
const limit = 10;
`)

	index := Build([]*extract.FileEntities{fe}, "/ws")

	if index.Metadata.ToolInfo.Name != ToolName {
		t.Errorf("tool = %q, want %q", index.Metadata.ToolInfo.Name, ToolName)
	}
	if len(index.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(index.Documents))
	}
	doc := index.Documents[0]
	if doc.RelativePath != "src/app.js" || doc.Language != "javascript" {
		t.Errorf("doc = %s/%s", doc.RelativePath, doc.Language)
	}

	// Account class, deposit method, limit variable.
	if len(doc.Symbols) != 3 {
		t.Fatalf("symbols = %d, want 3: %+v", len(doc.Symbols), doc.Symbols)
	}
	kinds := map[string]scippb.SymbolInformation_Kind{}
	for _, s := range doc.Symbols {
		kinds[s.DisplayName] = s.Kind
	}
	if kinds["Account"] != scippb.SymbolInformation_Class {
		t.Errorf("Account kind = %v", kinds["Account"])
	}
	if kinds["Account#deposit"] != scippb.SymbolInformation_Method {
		t.Errorf("deposit kind = %v", kinds["Account#deposit"])
	}
	if kinds["limit"] != scippb.SymbolInformation_Variable {
		t.Errorf("limit kind = %v", kinds["limit"])
	}

	if len(doc.Occurrences) != 3 {
		t.Fatalf("occurrences = %d, want 3", len(doc.Occurrences))
	}
	for _, occ := range doc.Occurrences {
		if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) == 0 {
			t.Errorf("occurrence %q lacks the definition role", occ.Symbol)
		}
		if len(occ.Range) != 3 {
			t.Errorf("range = %v, want single-line form", occ.Range)
		}
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	fe := extractFixture(t, "a.js", "function solo() {}\n")
	index := Build([]*extract.FileEntities{fe}, "/ws")

	path := filepath.Join(t.TempDir(), "out", "index.scip")
	if err := WriteFile(index, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var decoded scippb.Index
	if err := proto.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(decoded.Documents) != 1 || decoded.Documents[0].RelativePath != "a.js" {
		t.Errorf("decoded = %+v", decoded.Documents)
	}
}

func TestAnonymousFunctionsSkipped(t *testing.T) {
	fe := extractFixture(t, "a.js", "setTimeout(class {}, 1);\n")
	index := Build([]*extract.FileEntities{fe}, "/ws")

	if len(index.Documents) != 1 {
		t.Fatalf("documents = %d", len(index.Documents))
	}
	if len(index.Documents[0].Symbols) != 0 {
		t.Errorf("anonymous records must not export symbols: %+v", index.Documents[0].Symbols)
	}
}
