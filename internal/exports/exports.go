// Package exports finds the C++ classes a document registers with QML and
// describes them as fake meta-objects.
//
// The analysis never fails: call sites it cannot understand are skipped and
// what it cannot determine (a package, a version, a class) is left out of the
// result.
package exports

import (
	"cmp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/phobologic/qmlscan/internal/cppast"
	"github.com/phobologic/qmlscan/internal/lookup"
	"github.com/phobologic/qmlscan/internal/model"
	"github.com/phobologic/qmlscan/internal/symbols"
)

// Document is a parsed C++ file. *parse.Document implements it.
type Document interface {
	lookup.File
	Source() []byte
	AST() *cppast.Node
	HasIdentifier(name string) bool
	ScopeAt(offset int) symbols.Scope
}

// Options names the functions the finder recognizes.
type Options struct {
	// RegisterFunction is the template function that registers a type.
	RegisterFunction string `mapstructure:"register_function" yaml:"register_function"`
	// AssertFunctions may assert the value of an identifier uri.
	AssertFunctions []string `mapstructure:"assert_functions" yaml:"assert_functions"`
	// StringFunctions convert their single argument to a string and are
	// looked through inside assertions.
	StringFunctions []string `mapstructure:"string_functions" yaml:"string_functions"`
}

// DefaultOptions returns the spellings Qt uses.
func DefaultOptions() Options {
	return Options{
		RegisterFunction: "qmlRegisterType",
		AssertFunctions:  []string{"Q_ASSERT", "assert", "qt_assert"},
		StringFunctions:  []string{"QLatin1String", "QString"},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RegisterFunction == "" {
		o.RegisterFunction = d.RegisterFunction
	}
	if o.AssertFunctions == nil {
		o.AssertFunctions = d.AssertFunctions
	}
	if o.StringFunctions == nil {
		o.StringFunctions = d.StringFunctions
	}
	return o
}

// FindExportedCppTypes analyzes documents against one snapshot. It keeps no
// state between calls and may be used concurrently.
type FindExportedCppTypes struct {
	snapshot *lookup.Snapshot
	opts     Options
	log      *zap.Logger

	newLookup func(Document) Lookup
}

// New returns an analyzer resolving names in snapshot. Empty fields of opts
// take their default. A nil log discards output.
func New(snapshot *lookup.Snapshot, opts Options, log *zap.Logger) *FindExportedCppTypes {
	if log == nil {
		log = zap.NewNop()
	}
	f := &FindExportedCppTypes{snapshot: snapshot, opts: opts.withDefaults(), log: log}
	f.newLookup = func(doc Document) Lookup { return lookup.New(f.snapshot, doc) }
	return f
}

// MaybeExportsTypes reports whether doc mentions the registration function
// at all. It is much cheaper than Analyze.
func (f *FindExportedCppTypes) MaybeExportsTypes(doc Document) bool {
	return doc.HasIdentifier(f.opts.RegisterFunction)
}

// Result is the outcome of one run over a document.
type Result struct {
	// Objects holds one meta-object per registration call, in source order.
	Objects []*model.FakeMetaObject
	// Classes maps every class that was described, registered classes and
	// their bases alike, to its meta-object.
	Classes map[*symbols.Class]*model.FakeMetaObject
}

// Bases returns the meta-objects in r.Classes that are not in r.Objects,
// ordered by class name.
func (r Result) Bases() []*model.FakeMetaObject {
	exported := make(map[*model.FakeMetaObject]bool, len(r.Objects))
	for _, o := range r.Objects {
		exported[o] = true
	}
	var out []*model.FakeMetaObject
	for _, o := range r.Classes {
		if !exported[o] {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b *model.FakeMetaObject) int {
		return cmp.Or(
			strings.Compare(a.ClassName, b.ClassName),
			strings.Compare(a.SuperclassName, b.SuperclassName),
		)
	})
	return out
}

// Analyze returns the meta-objects of the types doc registers.
func (f *FindExportedCppTypes) Analyze(doc Document) []*model.FakeMetaObject {
	return f.Run(doc).Objects
}

// Run is Analyze that also returns the base-class meta-objects.
func (f *FindExportedCppTypes) Run(doc Document) Result {
	var res Result
	if len(doc.Source()) == 0 || doc.AST() == nil {
		return res
	}

	exports := FindExports(doc, f.opts)
	if len(exports) == 0 {
		return res
	}

	log := f.log.With(zap.String("file", doc.Path()))
	p := &populator{
		typeOf:  f.newLookup(doc),
		classes: make(map[*symbols.Class]*model.FakeMetaObject),
		log:     log,
	}
	var names symbols.Overview
	for _, exp := range exports {
		fmo := &model.FakeMetaObject{}
		fmo.AddExport(exp.TypeName, exp.PackageName, exp.Version)
		res.Objects = append(res.Objects, fmo)

		if exp.PackageName == model.DefaultPackage {
			log.Debug("registration without static uri or version",
				zap.String("type", exp.TypeName), zap.String("class", exp.TypeExpression))
		} else {
			log.Debug("registration",
				zap.String("type", exp.TypeName), zap.String("package", exp.PackageName),
				zap.Stringer("version", exp.Version), zap.String("class", exp.TypeExpression))
		}

		klass := LookupClass(exp.TypeExpression, exp.Scope, p.typeOf)
		if klass == nil {
			log.Debug("registered class not found", zap.String("class", exp.TypeExpression))
			continue
		}
		fmo.ClassName = klass.QualifiedName()

		// The C++ name is exported too, so it can be used in property types.
		fmo.AddExport(names.Name(klass), model.CppPackage, model.ComponentVersion{})

		p.populate(fmo, klass)
	}
	res.Classes = p.classes
	return res
}
