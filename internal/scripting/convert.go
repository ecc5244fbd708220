package scripting

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// ToLua converts plain Go values into Lua values owned by L. Supported inputs
// are nil, bool, string, ints, float64, []any, []string, map[string]any and
// lua.LValue. Slices become 1-based array tables.
func ToLua(L *lua.LState, v any) (lua.LValue, error) {
	switch x := v.(type) {
	case nil:
		return lua.LNil, nil
	case lua.LValue:
		return x, nil
	case bool:
		return lua.LBool(x), nil
	case string:
		return lua.LString(x), nil
	case int:
		return lua.LNumber(x), nil
	case int64:
		return lua.LNumber(x), nil
	case float64:
		return lua.LNumber(x), nil
	case []string:
		tbl := L.NewTable()
		for _, s := range x {
			tbl.Append(lua.LString(s))
		}
		return tbl, nil
	case []any:
		tbl := L.NewTable()
		for i, e := range x {
			lv, err := ToLua(L, e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			tbl.Append(lv)
		}
		return tbl, nil
	case map[string]any:
		tbl := L.NewTable()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lv, err := ToLua(L, x[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			tbl.RawSetString(k, lv)
		}
		return tbl, nil
	}
	return nil, fmt.Errorf("scripting: cannot convert %T to Lua", v)
}
