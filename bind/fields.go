// Copyright (C) 2019 the serde-edn authors. All Rights Reserved.

package bind

import (
	"reflect"
	"strings"
	"sync"
)

// A field records how one exported struct field binds to a map entry.
type field struct {
	name      string // the entry key text, without sigil
	index     []int  // reflect field index path
	omitEmpty bool
}

type structInfo struct {
	fields []field
	byName map[string]int // key text to fields offset
}

var structCache sync.Map // reflect.Type to *structInfo

// infoFor returns the field bindings for a struct type, computing and
// caching them on first use.
func infoFor(t reflect.Type) *structInfo {
	if v, ok := structCache.Load(t); ok {
		return v.(*structInfo)
	}
	info := &structInfo{byName: make(map[string]int)}
	collectFields(t, nil, info)
	actual, _ := structCache.LoadOrStore(t, info)
	return actual.(*structInfo)
}

func collectFields(t reflect.Type, prefix []int, info *structInfo) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), prefix...), i)
		if sf.Anonymous && sf.Tag.Get("edn") == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && sf.IsExported() {
				collectFields(ft, index, info)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		name, opts := parseTag(sf.Tag.Get("edn"))
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if _, ok := info.byName[name]; ok {
			continue // first binding wins
		}
		info.byName[name] = len(info.fields)
		info.fields = append(info.fields, field{
			name:      name,
			index:     index,
			omitEmpty: opts.has("omitempty"),
		})
	}
}

// lookup resolves a map key against the bindings, preferring an exact match
// and falling back to a case-insensitive one.
func (info *structInfo) lookup(name string) (field, bool) {
	if i, ok := info.byName[name]; ok {
		return info.fields[i], true
	}
	for _, f := range info.fields {
		if strings.EqualFold(f.name, name) {
			return f, true
		}
	}
	return field{}, false
}

type tagOptions string

func parseTag(tag string) (string, tagOptions) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, tagOptions(opts)
}

func (o tagOptions) has(name string) bool {
	s := string(o)
	for s != "" {
		var cur string
		cur, s, _ = strings.Cut(s, ",")
		if cur == name {
			return true
		}
	}
	return false
}

// fieldValue walks an index path, allocating nil pointers along the way.
func fieldValue(rv reflect.Value, index []int) reflect.Value {
	for _, i := range index {
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				rv.Set(reflect.New(rv.Type().Elem()))
			}
			rv = rv.Elem()
		}
		rv = rv.Field(i)
	}
	return rv
}
