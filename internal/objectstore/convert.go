package objectstore

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/roach88/brewdb/internal/schema"
)

const dateLayout = "2006-01-02"

// toColumn converts an in-memory property value into a bind argument.
func toColumn(f schema.Field, v any) (any, error) {
	switch f.Type {
	case schema.Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, badValue(f, v)
		}
		return b, nil

	case schema.Int, schema.UInt:
		n, ok := asInt64(v)
		if !ok {
			return nil, badValue(f, v)
		}
		// Unresolved relations are stored as NULL rather than as an
		// invalid key.
		if f.IsForeignKey() && n <= 0 {
			return nil, nil
		}
		return n, nil

	case schema.Double:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		}
		if n, ok := asInt64(v); ok {
			return float64(n), nil
		}
		return nil, badValue(f, v)

	case schema.String:
		s, ok := v.(string)
		if !ok {
			return nil, badValue(f, v)
		}
		return s, nil

	case schema.Date:
		t, ok := v.(time.Time)
		if !ok {
			return nil, badValue(f, v)
		}
		if t.IsZero() {
			return nil, nil
		}
		return t.Format(dateLayout), nil

	case schema.Enum:
		n, ok := asInt64(v)
		if !ok {
			return nil, badValue(f, v)
		}
		s, ok := f.Enum.String(int(n))
		if !ok {
			return nil, fmt.Errorf("%w: %s has no %s value %d", ErrBadValue, f.Property, f.Enum.Name(), n)
		}
		return s, nil
	}
	return nil, badValue(f, v)
}

// fromColumn converts a scanned column into the in-memory property value.
// NULL becomes the zero value of the field type.
func fromColumn(f schema.Field, raw any) (any, error) {
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}

	switch f.Type {
	case schema.Bool:
		switch x := raw.(type) {
		case nil:
			return false, nil
		case bool:
			return x, nil
		case int64:
			return x != 0, nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return nil, badValue(f, raw)
			}
			return b, nil
		}

	case schema.Int, schema.UInt:
		switch x := raw.(type) {
		case nil:
			return 0, nil
		case int64:
			return int(x), nil
		case float64:
			if x == math.Trunc(x) {
				return int(x), nil
			}
		case string:
			if n, err := strconv.Atoi(x); err == nil {
				return n, nil
			}
		}

	case schema.Double:
		switch x := raw.(type) {
		case nil:
			return 0.0, nil
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		case string:
			if n, err := strconv.ParseFloat(x, 64); err == nil {
				return n, nil
			}
		}

	case schema.String:
		switch x := raw.(type) {
		case nil:
			return "", nil
		case string:
			return x, nil
		}

	case schema.Date:
		switch x := raw.(type) {
		case nil:
			return time.Time{}, nil
		case time.Time:
			return x, nil
		case string:
			if x == "" {
				return time.Time{}, nil
			}
			if t, err := time.Parse(dateLayout, x); err == nil {
				return t, nil
			}
			if t, err := time.Parse(time.RFC3339, x); err == nil {
				return t, nil
			}
		}

	case schema.Enum:
		switch x := raw.(type) {
		case nil:
			return 0, nil
		case string:
			if v, ok := f.Enum.Value(x); ok {
				return v, nil
			}
			return nil, fmt.Errorf("%w: %q is not a %s", ErrBadValue, x, f.Enum.Name())
		}
	}
	return nil, badValue(f, raw)
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	}
	return 0, false
}

func badValue(f schema.Field, v any) error {
	return fmt.Errorf("%w: %s (%s) got %T", ErrBadValue, f.Property, f.Type, v)
}
