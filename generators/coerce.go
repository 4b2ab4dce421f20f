package generators

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Coerce validates args against the declared parameters and converts loosely
// typed values (numeric strings, whole floats for integers, scalar for a
// one-element array) to the declared types. Undeclared keys are kept.
func (v Vars) Coerce(args map[string]any) (map[string]any, error) {
	ret := make(map[string]any, len(args))
	for k, value := range args {
		ret[k] = value
	}
	for _, variable := range v {
		value, ok := args[variable.Name]
		if !ok || value == nil {
			if !variable.Optional {
				return nil, fmt.Errorf("%w: missing required argument %q", ErrInvalidArgument, variable.Name)
			}
			delete(ret, variable.Name)
			continue
		}
		coerced, err := variable.Coerce(value)
		if err != nil {
			return nil, err
		}
		ret[variable.Name] = coerced
	}
	return ret, nil
}

func (v Var) Coerce(value any) (any, error) {
	bad := func() error {
		return fmt.Errorf("%w: %q: expecting %s, got %T", ErrInvalidArgument, v.Name, v.Type, value)
	}

	switch v.Type {

	case TypeString:
		switch value := value.(type) {
		case string:
			return value, nil
		case float64, int, int64, bool:
			return fmt.Sprint(value), nil
		}
		return nil, bad()

	case TypeNumber:
		switch value := value.(type) {
		case float64:
			return value, nil
		case int:
			return float64(value), nil
		case int64:
			return float64(value), nil
		case json.Number:
			return value.Float64()
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return nil, bad()
			}
			return f, nil
		}
		return nil, bad()

	case TypeInteger:
		switch value := value.(type) {
		case int:
			return value, nil
		case int64:
			return int(value), nil
		case float64:
			if value != math.Trunc(value) {
				return nil, bad()
			}
			return int(value), nil
		case json.Number:
			i, err := value.Int64()
			if err != nil {
				return nil, bad()
			}
			return int(i), nil
		case string:
			i, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, bad()
			}
			return i, nil
		}
		return nil, bad()

	case TypeBoolean:
		switch value := value.(type) {
		case bool:
			return value, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return nil, bad()
			}
			return b, nil
		}
		return nil, bad()

	case TypeArray:
		var elems []any
		switch value := value.(type) {
		case []any:
			elems = value
		case []string:
			for _, s := range value {
				elems = append(elems, s)
			}
		default:
			// single value for a list
			elems = []any{value}
		}
		if v.ItemType == nil {
			return elems, nil
		}
		ret := make([]any, 0, len(elems))
		for _, elem := range elems {
			coerced, err := v.ItemType.Coerce(elem)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", v.Name, err)
			}
			ret = append(ret, coerced)
		}
		return ret, nil

	case TypeObject:
		m, ok := value.(map[string]any)
		if !ok {
			s, isString := value.(string)
			if !isString || json.Unmarshal([]byte(s), &m) != nil {
				return nil, bad()
			}
		}
		if len(v.Properties) == 0 {
			return m, nil
		}
		return v.Properties.Coerce(m)

	case TypeAny, TypeNone:
		return value, nil

	}

	return nil, fmt.Errorf("unknown type: %v", v.Type)
}
