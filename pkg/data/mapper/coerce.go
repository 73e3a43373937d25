package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// coerceScalar converts v to the plain representation of t. Strings are
// parsed; values already of a compatible Go type are accepted as they are.
// Times and versions stay strings in plain documents once validated.
func coerceScalar(t ScalarType, v any) (any, error) {
	switch t {
	case TypeString:
		switch s := v.(type) {
		case string:
			return s, nil
		case int, int64, float64, bool:
			return fmt.Sprint(s), nil
		}
	case TypeInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n == math.Trunc(n) {
				return int(n), nil
			}
		case string:
			i, err := strconv.Atoi(strings.TrimSpace(n))
			if err != nil {
				return nil, err
			}
			return i, nil
		}
	case TypeBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return nil, err
			}
			return parsed, nil
		}
	case TypeFloat:
		switch f := v.(type) {
		case float64:
			return f, nil
		case int:
			return float64(f), nil
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, err
			}
			return parsed, nil
		}
	case TypeTime:
		switch ts := v.(type) {
		case time.Time:
			return ts.UTC().Format(time.RFC3339Nano), nil
		case string:
			if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
				return nil, err
			}
			return ts, nil
		}
	case TypeSemVer:
		switch s := v.(type) {
		case *semver.Version:
			return s.String(), nil
		case string:
			if _, err := semver.NewVersion(s); err != nil {
				return nil, err
			}
			return s, nil
		}
	}
	return nil, fmt.Errorf("cannot convert %T to %s", v, t)
}

// formatScalar renders a plain scalar as a flat value.
func formatScalar(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case time.Time:
		return s.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(s)
	}
}
