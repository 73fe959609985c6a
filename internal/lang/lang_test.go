package lang

import (
	"context"
	"testing"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".h", "cpp"},
		{".cpp", "cpp"},
		{".HPP", "cpp"},
		{".cxx", "cpp"},
		{".py", ""},
		{".go", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got := ForExtension(tt.ext)
			if got != tt.want {
				t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	l, ok := Languages[CPP]
	if !ok {
		t.Fatal("cpp language not registered")
	}
	if l.grammar == nil {
		t.Error("cpp grammar is nil")
	}
	if !l.Accepts(".H") || l.Accepts("h") || l.Accepts(".qml") {
		t.Errorf("unexpected Accepts results for %v", l.Extensions)
	}
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	p := Languages[CPP].NewParser()
	if p == nil {
		t.Fatal("NewParser returned nil")
	}
}

func TestGetIdentifierQuery(t *testing.T) {
	t.Parallel()

	q, err := Languages[CPP].GetIdentifierQuery()
	if err != nil {
		t.Fatalf("GetIdentifierQuery: %v", err)
	}
	if q == nil {
		t.Fatal("query is nil")
	}
	if q.CaptureCount() != 1 {
		t.Errorf("capture count = %d, want 1", q.CaptureCount())
	}
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"  const\n\tQString  & ": "const QString &",
		"QList<QObject *>":        "QList<QObject *>",
		" \n ":                    "",
	} {
		if got := CollapseWhitespace(in); got != want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNodeText(t *testing.T) {
	t.Parallel()

	source := []byte("class MyItem {};")
	tree, err := Languages[CPP].NewParser().ParseCtx(context.Background(), nil, source)
	if err != nil {
		t.Fatal(err)
	}
	spec := tree.RootNode().NamedChild(0).ChildByFieldName("name")
	if spec == nil {
		t.Fatal("no class name node")
	}
	if got := NodeText(spec, source); got != "MyItem" {
		t.Errorf("NodeText = %q, want MyItem", got)
	}
}
