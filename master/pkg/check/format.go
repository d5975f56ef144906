package check

import (
	"fmt"
	"reflect"
)

// format renders a value for an error message, dereferencing non-nil pointers so that messages
// show the pointed-to value instead of an address.
func format(i interface{}) string {
	v := reflect.ValueOf(i)
	for v.Kind() == reflect.Ptr && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return "<nil>"
	}
	if v.Type() == reflect.TypeOf(i) {
		return fmt.Sprintf("%+v", i)
	}
	return fmt.Sprintf("%T(%+v)", i, v.Interface())
}

func messageFromMsgAndArgs(formatPointers bool, msgAndArgs ...interface{}) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	msg, ok := msgAndArgs[0].(string)
	if !ok {
		return format(msgAndArgs[0])
	}
	if len(msgAndArgs) == 1 {
		return msg
	}
	args := make([]interface{}, 0, len(msgAndArgs)-1)
	for _, arg := range msgAndArgs[1:] {
		if formatPointers {
			arg = format(arg)
		}
		args = append(args, arg)
	}
	return fmt.Sprintf(msg, args...)
}
