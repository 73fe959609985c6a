package filter

import (
	"testing"

	"github.com/phobologic/qmlscan/internal/model"
)

func object(file, class, super string, base bool, types ...string) model.FileObject {
	o := model.FileObject{File: file, Base: base}
	o.ClassName = class
	o.SuperclassName = super
	for _, t := range types {
		o.AddExport(t, "com.example", model.NewComponentVersion(1, 0))
	}
	return o
}

func makeReport() *model.Report {
	return &model.Report{
		Root: "test",
		Objects: []model.FileObject{
			object("src/plugin.cpp", "app::Dial", "Control", false, "Dial"),
			object("src/plugin.cpp", "Slider", "Control", false, "FancySlider"),
			object("src/plugin.cpp", "app::Control", "QObject", true),
			object("src/other.cpp", "Gauge", "", false, "Gauge"),
			object("src/other.cpp", "Control", "", true),
		},
	}
}

func classNames(r *model.Report) []string {
	var names []string
	for _, o := range r.Objects {
		names = append(names, o.ClassName)
	}
	return names
}

func TestByFile(t *testing.T) {
	t.Parallel()

	got := ByFile(makeReport(), "OTHER")
	if got.Root != "test" {
		t.Errorf("root = %q", got.Root)
	}
	names := classNames(got)
	if len(names) != 2 || names[0] != "Gauge" || names[1] != "Control" {
		t.Errorf("got %v, want [Gauge Control]", names)
	}

	if got := ByFile(makeReport(), "missing"); got.Objects == nil || len(got.Objects) != 0 {
		t.Errorf("expected empty, non-nil objects, got %#v", got.Objects)
	}
}

func TestByTypeFollowsBases(t *testing.T) {
	t.Parallel()

	// Matches the class name; Control resolves to app::Control in the same file.
	names := classNames(ByType(makeReport(), "dial"))
	if len(names) != 2 || names[0] != "app::Dial" || names[1] != "app::Control" {
		t.Errorf("got %v, want [app::Dial app::Control]", names)
	}
}

func TestByTypeMatchesExportName(t *testing.T) {
	t.Parallel()

	names := classNames(ByType(makeReport(), "fancy"))
	if len(names) != 2 || names[0] != "Slider" || names[1] != "app::Control" {
		t.Errorf("got %v, want [Slider app::Control]", names)
	}
}

func TestByTypeSkipsBaseMatches(t *testing.T) {
	t.Parallel()

	// Base objects are only kept through a registered type.
	names := classNames(ByType(makeReport(), "control"))
	if len(names) != 0 {
		t.Errorf("got %v, want none", names)
	}
}

func TestByTypeCycle(t *testing.T) {
	t.Parallel()

	r := &model.Report{Objects: []model.FileObject{
		object("a.cpp", "A", "B", false, "A"),
		object("a.cpp", "B", "C", true),
		object("a.cpp", "C", "B", true),
	}}
	names := classNames(ByType(r, "A"))
	if len(names) != 3 {
		t.Errorf("got %v, want [A B C]", names)
	}
}
