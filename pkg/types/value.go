package types

import (
	"fmt"
	"sort"
)

// DataType tags an attribute column with the kind of value it holds.
type DataType string

// Attribute data types.
const (
	DataTypeNumber  DataType = "number"
	DataTypeString  DataType = "string"
	DataTypeBoolean DataType = "boolean"
	DataTypeList    DataType = "list"
	DataTypeDict    DataType = "dict"
)

var validDataTypes = map[DataType]bool{
	DataTypeNumber:  true,
	DataTypeString:  true,
	DataTypeBoolean: true,
	DataTypeList:    true,
	DataTypeDict:    true,
}

// Valid reports whether dt is a recognised data type.
func (dt DataType) Valid() bool {
	return validDataTypes[dt]
}

// DefaultValue returns the zero value for a data type.
func DefaultValue(dt DataType) (any, error) {
	switch dt {
	case DataTypeNumber:
		return float64(0), nil
	case DataTypeString:
		return "", nil
	case DataTypeBoolean:
		return false, nil
	case DataTypeList:
		return []any{}, nil
	case DataTypeDict:
		return map[string]any{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrDataTypeMismatch, dt)
	}
}

// NormalizeValue converts a Go value into the canonical attribute
// representation (float64, string, bool, []any, map[string]any or nil)
// and reports its data type. nil reports an empty data type.
func NormalizeValue(v any) (any, DataType, error) {
	switch x := v.(type) {
	case nil:
		return nil, "", nil
	case float64:
		return x, DataTypeNumber, nil
	case float32:
		return float64(x), DataTypeNumber, nil
	case int:
		return float64(x), DataTypeNumber, nil
	case int32:
		return float64(x), DataTypeNumber, nil
	case int64:
		return float64(x), DataTypeNumber, nil
	case uint32:
		return float64(x), DataTypeNumber, nil
	case string:
		return x, DataTypeString, nil
	case bool:
		return x, DataTypeBoolean, nil
	case []float64:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = f
		}
		return out, DataTypeList, nil
	case [3]float64:
		return []any{x[0], x[1], x[2]}, DataTypeList, nil
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, DataTypeList, nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			n, _, err := NormalizeValue(item)
			if err != nil {
				return nil, "", err
			}
			out[i] = n
		}
		return out, DataTypeList, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			n, _, err := NormalizeValue(item)
			if err != nil {
				return nil, "", err
			}
			out[k] = n
		}
		return out, DataTypeDict, nil
	default:
		return nil, "", fmt.Errorf("%w: unsupported value %T", ErrDataTypeMismatch, v)
	}
}

// CloneValue deep-copies a canonical attribute value.
func CloneValue(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = CloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

// SortedKeys returns the keys of a dict value in ascending order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
