package interpreter

import (
	"fmt"
	"strings"
	"time"
)

// stringify renders a value the way println formats each of its
// arguments: Number uses Go's default float formatting, String is its
// own contents, Bool is "true"/"false", Nil is "nil", and a Callable is
// always "function".
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	case Callable:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// registerNatives pre-binds the host functions exposed to every program:
// clock() and println(...).
func registerNatives(globals *Environment) {
	globals.define("clock", NativeFunction{
		Name: "clock",
		Arty: 0,
		Apply: func(args []any) (any, error) {
			return float64(time.Now().UnixNano()) / 1e9, nil
		},
	})

	globals.define("println", NativeFunction{
		Name: "println",
		Arty: -1,
		Apply: func(args []any) (any, error) {
			parts := make([]string, 0, len(args))
			for _, a := range args {
				parts = append(parts, stringify(a))
			}
			fmt.Println(strings.Join(parts, " "))
			return nil, nil
		},
	})
}
