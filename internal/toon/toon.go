// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/qmlscan/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a Report into TOON format. Objects are listed once; the
// other tables refer to them by their row index in the objects table.
func Encode(r *model.Report) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(r.Root)))

	var objectRows, exportRows, propertyRows, methodRows, enumRows [][]any
	for i := range r.Objects {
		o := &r.Objects[i]
		objectRows = append(objectRows, []any{o.File, o.ClassName, o.SuperclassName, o.Base})
		for _, e := range o.Exports {
			exportRows = append(exportRows, []any{i, e.Type, e.Package, e.Version})
		}
		for _, p := range o.Properties {
			propertyRows = append(propertyRows, []any{i, p.Name, p.Type, p.IsWritable, p.IsPointer, p.IsList})
		}
		for _, m := range o.Methods {
			methodRows = append(methodRows, []any{
				i,
				m.Name,
				string(m.MethodType),
				m.ReturnType,
				parameterList(m.Parameters),
			})
		}
		for _, e := range o.Enums {
			keys := make([]string, len(e.Keys))
			for j, k := range e.Keys {
				keys[j] = k.Name
			}
			enumRows = append(enumRows, []any{i, e.Name, strings.Join(keys, " ")})
		}
	}

	parts = append(parts, formatTabular("objects", []string{"file", "class", "superclass", "base"}, objectRows))
	parts = append(parts, formatTabular("exports", []string{"object", "type", "package", "version"}, exportRows))
	parts = append(parts, formatTabular("properties", []string{"object", "name", "type", "writable", "pointer", "list"}, propertyRows))
	parts = append(parts, formatTabular("methods", []string{"object", "name", "kind", "returns", "parameters"}, methodRows))
	parts = append(parts, formatTabular("enums", []string{"object", "name", "keys"}, enumRows))

	return strings.Join(parts, "\n")
}

// parameterList renders parameters as "type name" pairs in C++ order.
func parameterList(params []model.Parameter) string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = strings.TrimSpace(p.Type + " " + p.Name)
	}
	return strings.Join(out, "; ")
}

func formatTabular(name string, columns []string, rows [][]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeCell(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

// encodeCell writes booleans and integers as TOON primitives and everything
// else as a string.
func encodeCell(cell any) string {
	switch v := cell.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case string:
		return encodeValue(v)
	case model.ComponentVersion:
		// "1.10" must not read back as the number 1.1.
		if !v.IsValid() {
			return `""`
		}
		return quote(v.String())
	default:
		return encodeValue(fmt.Sprint(v))
	}
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
