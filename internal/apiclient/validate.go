package apiclient

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkContract validates a decoded response against its validate tags.
// Structs are validated directly; slices are validated element by element.
func checkContract(out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		if err := validate.Struct(v.Interface()); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			el := v.Index(i)
			for el.Kind() == reflect.Pointer && !el.IsNil() {
				el = el.Elem()
			}
			if el.Kind() != reflect.Struct {
				continue
			}
			if err := validate.Struct(el.Interface()); err != nil {
				return fmt.Errorf("%w: item %d: %v", ErrInvalidResponse, i, err)
			}
		}
	}
	return nil
}
