package config

import (
	"fmt"
	"reflect"
)

// FieldDiff is one setting that differs between two configurations
type FieldDiff struct {
	Section string
	Field   string
	A, B    string
}

// Sections lists the top-level configuration sections by their YAML names
func Sections() []string {
	t := reflect.TypeOf(ConfigData{})
	names := make([]string, t.NumField())
	for i := range names {
		names[i] = t.Field(i).Tag.Get("yaml")
	}
	return names
}

// Diff compares a and b field by field and returns every difference, keyed
// by YAML section and field name.
func Diff(a, b *ConfigData) []FieldDiff {
	var diffs []FieldDiff

	va, vb := reflect.ValueOf(a).Elem(), reflect.ValueOf(b).Elem()
	t := va.Type()
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i).Tag.Get("yaml")
		sa, sb := va.Field(i), vb.Field(i)
		st := sa.Type()
		for j := 0; j < st.NumField(); j++ {
			fa, fb := sa.Field(j).Interface(), sb.Field(j).Interface()
			if reflect.DeepEqual(fa, fb) {
				continue
			}
			diffs = append(diffs, FieldDiff{
				Section: section,
				Field:   yamlName(st.Field(j)),
				A:       fmt.Sprintf("%v", fa),
				B:       fmt.Sprintf("%v", fb),
			})
		}
	}
	return diffs
}

func yamlName(f reflect.StructField) string {
	tag := f.Tag.Get("yaml")
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i]
		}
	}
	if tag == "" {
		return f.Name
	}
	return tag
}
