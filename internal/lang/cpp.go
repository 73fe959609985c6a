package lang

import (
	"github.com/smacker/go-tree-sitter/cpp"
)

// CPP is the name C++ is registered under.
const CPP = "cpp"

func init() {
	Languages[CPP] = &Language{
		Name:       CPP,
		Extensions: []string{".h", ".hh", ".hpp", ".hxx", ".h++", ".cc", ".cpp", ".cxx", ".c++"},
		grammar:    cpp.GetLanguage(),
	}
}
