package generators

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Type is the declared type of a capability parameter.
type Type uint8

const (
	TypeNone Type = iota
	TypeString
	TypeNumber
	TypeInteger
	TypeBoolean
	TypeArray
	TypeObject
	TypeAny
)

var typeNames = map[Type]string{
	TypeNone:    "none",
	TypeString:  "string",
	TypeNumber:  "number",
	TypeInteger: "int",
	TypeBoolean: "bool",
	TypeArray:   "array",
	TypeObject:  "object",
	TypeAny:     "any",
}

// accepted spellings when decoding
var typeAliases = map[string]Type{
	"nil":     TypeNone,
	"str":     TypeString,
	"num":     TypeNumber,
	"integer": TypeInteger,
	"boolean": TypeBoolean,
	"list":    TypeArray,
	"struct":  TypeObject,
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

var _ json.Marshaler = Type(0)

func (t Type) MarshalJSON() ([]byte, error) {
	name, ok := typeNames[t]
	if !ok {
		return nil, fmt.Errorf("invalid type: %d", uint8(t))
	}
	return []byte(strconv.Quote(name)), nil
}

var _ json.Unmarshaler = new(Type)

func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid type: %s", data)
	}
	if typ, ok := typeAliases[s]; ok {
		*t = typ
		return nil
	}
	for typ, name := range typeNames {
		if name == s {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("invalid type: %s", data)
}
