package exports

import (
	"go.uber.org/zap"

	"github.com/phobologic/qmlscan/internal/model"
	"github.com/phobologic/qmlscan/internal/symbols"
)

// populator fills meta-objects from class symbols. Each class is described
// at most once per run; classes maps a class to its meta-object.
type populator struct {
	typeOf  Lookup
	classes map[*symbols.Class]*model.FakeMetaObject
	log     *zap.Logger
}

func (p *populator) populate(fmo *model.FakeMetaObject, klass *symbols.Class) {
	var names symbols.Overview

	p.classes[klass] = fmo

	for _, member := range klass.Members() {
		if member.Name() == "" {
			continue
		}
		switch m := member.(type) {
		case *symbols.Function:
			if !m.IsSlot() && !m.IsInvokable() && !m.IsSignal() {
				continue
			}
			method := model.NewMethod(names.Name(m), ToQmlType(m.ReturnType))
			if m.IsSignal() {
				method.MethodType = model.Signal
			} else {
				method.MethodType = model.Slot
			}
			for i := 0; i < m.ArgumentCount(); i++ {
				arg := m.ArgumentAt(i)
				method.AddParameter(names.Name(arg), ToQmlType(arg.Type))
			}
			fmo.AddMethod(method)

		case *symbols.Property:
			fmo.AddProperty(model.Property{
				Name:       names.Name(m),
				Type:       ToQmlType(m.Type),
				IsList:     false,
				IsWritable: m.Flags&symbols.WriteFunction != 0,
				IsPointer:  symbols.IsPointer(m.Type),
				Revision:   0,
			})

		case *symbols.QtEnum:
			e := lookupEnum(names.Name(m), klass, p.typeOf)
			if e == nil {
				p.log.Debug("registered enum not found",
					zap.String("class", klass.QualifiedName()), zap.String("enum", m.Name()))
				continue
			}
			metaEnum := model.Enum{Name: names.Name(e)}
			for _, key := range e.Enumerators() {
				if key.Name() == "" {
					continue
				}
				metaEnum.AddKey(names.Name(key), 0)
			}
			fmo.AddEnum(metaEnum)
		}
	}

	// Only single inheritance is described.
	if klass.BaseClassCount() == 0 {
		return
	}
	base := klass.BaseClassAt(0)
	if base.Name == "" {
		return
	}
	fmo.SetSuperclassName(base.Name)

	baseClass := LookupClass(base.Name, klass, p.typeOf)
	if baseClass == nil {
		p.log.Debug("base class not found",
			zap.String("class", klass.QualifiedName()), zap.String("base", base.Name))
		return
	}
	if _, done := p.classes[baseClass]; !done {
		p.populate(&model.FakeMetaObject{ClassName: baseClass.QualifiedName()}, baseClass)
	}
}
