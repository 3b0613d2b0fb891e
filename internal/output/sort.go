package output

import (
	"fmt"
	"reflect"
	"sort"
)

// SortCriteria names one struct field to order by.
type SortCriteria struct {
	Field      string
	Descending bool
}

// MultiFieldSort stable-sorts *[]T of structs by the named fields, applied in
// order; later criteria break ties. String, integer, and float fields are
// compared natively, anything else by its fmt representation.
func MultiFieldSort(slice interface{}, criteria []SortCriteria) error {
	val := reflect.ValueOf(slice)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("slice must be a pointer to a slice")
	}
	if len(criteria) == 0 {
		return fmt.Errorf("at least one sort criteria must be provided")
	}
	elems := val.Elem()

	sort.SliceStable(elems.Interface(), func(i, j int) bool {
		for _, c := range criteria {
			cmp := compareField(elems.Index(i), elems.Index(j), c.Field)
			if cmp == 0 {
				continue
			}
			if c.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return nil
}

func compareField(a, b reflect.Value, field string) int {
	av := fieldValue(a, field)
	bv := fieldValue(b, field)
	if !av.IsValid() || !bv.IsValid() {
		return 0
	}

	switch av.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return compareOrdered(av.Int(), bv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return compareOrdered(av.Uint(), bv.Uint())
	case reflect.Float32, reflect.Float64:
		return compareOrdered(av.Float(), bv.Float())
	case reflect.String:
		return compareOrdered(av.String(), bv.String())
	default:
		return compareOrdered(fmt.Sprintf("%v", av.Interface()), fmt.Sprintf("%v", bv.Interface()))
	}
}

func fieldValue(v reflect.Value, field string) reflect.Value {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	return v.FieldByName(field)
}

func compareOrdered[T int64 | uint64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
