package check

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Validatable is implemented by anything that has fields that should be validated.
type Validatable interface {
	Validate() []error
}

// ValidationError collects every failed check found while walking a value.
type ValidationError struct {
	Errs []error
}

func (v ValidationError) Error() string {
	msgs := make([]string, 0, len(v.Errs))
	for _, err := range v.Errs {
		msgs = append(msgs, err.Error())
	}
	sort.Strings(msgs)
	return fmt.Sprintf("Check Failed! %d errors found:\n\t%s", len(v.Errs),
		strings.Join(msgs, "\n\t"))
}

// Validate walks v and every exported field, element and map value reachable from it, calling
// Validate on each Validatable it finds. All failures are combined into a single error.
func Validate(v interface{}) error {
	if errs := walk(reflect.ValueOf(v), "root"); len(errs) > 0 {
		return ValidationError{Errs: errs}
	}
	return nil
}

func walk(v reflect.Value, path string) []error {
	if !v.IsValid() {
		return nil
	}
	var errs []error
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return walk(v.Elem(), path)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			errs = append(errs, walk(v.Index(i), fmt.Sprintf("%s[%d]", path, i))...)
		}
	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, key := range keys {
			errs = append(errs, walk(v.MapIndex(key), fmt.Sprintf("%s[%v]", path, key.Interface()))...)
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			errs = append(errs, walk(v.Field(i), path+"."+t.Field(i).Name)...)
		}
	}

	// Addressable copy so that both value and pointer receivers are found.
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	if validatable, ok := ptr.Interface().(Validatable); ok {
		for _, err := range validatable.Validate() {
			if err != nil {
				errs = append(errs, errors.Wrapf(err, "error found at %s", path))
			}
		}
	}
	return errs
}
