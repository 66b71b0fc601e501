package scripting

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// ToLua converts a Go value into a Lua value owned by L.
// Supported: nil, bool, string, the int and float kinds, []any, []string,
// []int, map[string]any and lua.LValue. Anything else becomes LNil.
func ToLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return x
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case []string:
		t := L.NewTable()
		for _, s := range x {
			t.Append(lua.LString(s))
		}
		return t
	case []int:
		t := L.NewTable()
		for _, n := range x {
			t.Append(lua.LNumber(n))
		}
		return t
	case []any:
		t := L.NewTable()
		for _, e := range x {
			t.Append(ToLua(L, e))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, ToLua(L, x[k]))
		}
		return t
	default:
		return lua.LNil
	}
}

// IntList reads the array part of t as integers, skipping non-numbers.
// A nil or non-table value yields nil.
func IntList(v lua.LValue) []int {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	var out []int
	t.ForEach(func(k, e lua.LValue) {
		if _, isIndex := k.(lua.LNumber); !isIndex {
			return
		}
		if n, ok := e.(lua.LNumber); ok {
			out = append(out, int(n))
		}
	})
	return out
}
