package check

import (
	"fmt"

	"github.com/pkg/errors"
)

// check returns nil if the condition holds. Otherwise it builds an error from the caller's
// message (if any) followed by the default message.
func check(condition bool, msgAndArgs []interface{}, defaultMsg string, args ...interface{}) error {
	if condition {
		return nil
	}
	formatted := make([]interface{}, 0, len(args))
	for _, arg := range args {
		formatted = append(formatted, format(arg))
	}
	msg := fmt.Sprintf(defaultMsg, formatted...)
	if prefix := messageFromMsgAndArgs(false, msgAndArgs...); prefix != "" {
		return errors.Errorf("%s: %s", prefix, msg)
	}
	return errors.New(msg)
}

// True checks whether the condition is true.
func True(condition bool, msgAndArgs ...interface{}) error {
	return check(condition, msgAndArgs, "expected true, got false")
}

// False checks whether the condition is false.
func False(condition bool, msgAndArgs ...interface{}) error {
	return check(!condition, msgAndArgs, "expected false, got true")
}

// NotEmpty checks whether the string is non-empty.
func NotEmpty(actual string, msgAndArgs ...interface{}) error {
	return check(actual != "", msgAndArgs, "expected a non-empty value")
}

// GreaterThanOrEqualTo checks whether actual is greater than or equal to expected.
func GreaterThanOrEqualTo(actual, expected float64, msgAndArgs ...interface{}) error {
	return check(actual >= expected, msgAndArgs, "%s is not greater than or equal to %s",
		actual, expected)
}

// LessThanOrEqualTo checks whether actual is less than or equal to expected.
func LessThanOrEqualTo(actual, expected float64, msgAndArgs ...interface{}) error {
	return check(actual <= expected, msgAndArgs, "%s is not less than or equal to %s",
		actual, expected)
}

// In checks whether actual is one of the allowed values.
func In(actual string, allowed []string, msgAndArgs ...interface{}) error {
	for _, a := range allowed {
		if a == actual {
			return check(true, msgAndArgs, "")
		}
	}
	return check(false, msgAndArgs, "%s not in %s", actual, allowed)
}
