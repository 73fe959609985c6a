// Package filter narrows a scan report down to the objects a user asked for.
package filter

import (
	"strings"

	"github.com/phobologic/qmlscan/internal/model"
)

// ByFile returns a new Report containing only objects whose file path
// contains substr (case-insensitive).
func ByFile(r *model.Report, substr string) *model.Report {
	lower := strings.ToLower(substr)

	objects := []model.FileObject{}
	for i := range r.Objects {
		if strings.Contains(strings.ToLower(r.Objects[i].File), lower) {
			objects = append(objects, r.Objects[i])
		}
	}
	return &model.Report{Root: r.Root, Objects: objects}
}

// ByType returns a new Report containing only registered objects with a
// class name or exported type name that contains substr (case-insensitive),
// plus the base objects of their superclass chain from the same file.
func ByType(r *model.Report, substr string) *model.Report {
	lower := strings.ToLower(substr)

	// Indices of base objects by file.
	bases := make(map[string][]int)
	for i := range r.Objects {
		if r.Objects[i].Base {
			bases[r.Objects[i].File] = append(bases[r.Objects[i].File], i)
		}
	}

	keep := make([]bool, len(r.Objects))
	for i := range r.Objects {
		o := &r.Objects[i]
		if o.Base || !matches(o, lower) {
			continue
		}
		keep[i] = true

		// Follow the superclass chain; the visited check stops on cycles.
		super := o.SuperclassName
		for super != "" {
			j, ok := findBase(r.Objects, bases[o.File], super)
			if !ok || keep[j] {
				break
			}
			keep[j] = true
			super = r.Objects[j].SuperclassName
		}
	}

	objects := []model.FileObject{}
	for i := range r.Objects {
		if keep[i] {
			objects = append(objects, r.Objects[i])
		}
	}
	return &model.Report{Root: r.Root, Objects: objects}
}

func matches(o *model.FileObject, lower string) bool {
	if strings.Contains(strings.ToLower(o.ClassName), lower) {
		return true
	}
	for _, e := range o.Exports {
		if strings.Contains(strings.ToLower(e.Type), lower) {
			return true
		}
	}
	return false
}

// findBase looks up a superclass as written in source among the candidate
// objects. The name may be less qualified than the object's class name; an
// exact match wins.
func findBase(objects []model.FileObject, candidates []int, super string) (int, bool) {
	for _, i := range candidates {
		if objects[i].ClassName == super {
			return i, true
		}
	}
	for _, i := range candidates {
		if strings.HasSuffix(objects[i].ClassName, "::"+super) {
			return i, true
		}
	}
	return 0, false
}
