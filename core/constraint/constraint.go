// Package constraint implements the parameter validation rules attached
// to registered models. Each rule is a stateless value: Validate is a pure
// function of (constraint, value) that returns the (possibly normalized)
// value or a [*ViolationError] naming the rule that was broken.
package constraint

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Constraint validates a single parameter value. Implementations may
// normalize the value (e.g. Int converts a whole float64 to int, Dimensions
// resolves preset names); the normalized value is what gets mapped into the
// vendor request.
type Constraint interface {
	// Validate returns the normalized value, or a *ViolationError.
	Validate(value any) (any, error)
	// Describe returns a short human-readable rule description used in
	// error messages, e.g. "range [0, 2]".
	Describe() string
}

// ViolationError reports a value that failed a constraint.
type ViolationError struct {
	// Rule is the Describe() of the violated constraint.
	Rule    string
	Value   any
	Message string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%s (rule: %s)", e.Message, e.Rule)
}

func violation(c Constraint, value any, format string, args ...any) error {
	return &ViolationError{Rule: c.Describe(), Value: value, Message: fmt.Sprintf(format, args...)}
}

// asFloat converts the numeric types a parameter map can realistically
// carry (literals, JSON-decoded values) to float64. bool is explicitly not
// numeric.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// Range requires a numeric value within [Min, Max] inclusive. If Step is
// set the value must sit at Min + n*Step. SpecialValues bypass the bounds
// check entirely (some vendors use sentinels like -1 for "auto").
type Range struct {
	Min           float64
	Max           float64
	Step          float64
	SpecialValues []float64
}

func (c Range) Describe() string {
	return fmt.Sprintf("range [%v, %v]", c.Min, c.Max)
}

func (c Range) Validate(value any) (any, error) {
	n, ok := asFloat(value)
	if !ok {
		return nil, violation(c, value, "must be numeric, got %T", value)
	}
	for _, s := range c.SpecialValues {
		if n == s {
			return value, nil
		}
	}
	if n < c.Min || n > c.Max {
		return nil, violation(c, value, "must be between %v and %v, got %v", c.Min, c.Max, n)
	}
	if c.Step > 0 {
		remainder := math.Mod(n-c.Min, c.Step)
		const epsilon = 1e-9
		if !(math.Abs(remainder) < epsilon || math.Abs(remainder-c.Step) < epsilon) {
			below := c.Min + math.Floor((n-c.Min)/c.Step)*c.Step
			return nil, violation(c, value, "must match step %v: nearest valid %v or %v, got %v", c.Step, below, below+c.Step, n)
		}
	}
	return value, nil
}

// Min requires a numeric value >= Bound.
type Min struct {
	Bound float64
}

func (c Min) Describe() string { return fmt.Sprintf("min %v", c.Bound) }

func (c Min) Validate(value any) (any, error) {
	n, ok := asFloat(value)
	if !ok {
		return nil, violation(c, value, "must be numeric, got %T", value)
	}
	if n < c.Bound {
		return nil, violation(c, value, "must be at least %v, got %v", c.Bound, n)
	}
	return value, nil
}

// Max requires a numeric value <= Bound.
type Max struct {
	Bound float64
}

func (c Max) Describe() string { return fmt.Sprintf("max %v", c.Bound) }

func (c Max) Validate(value any) (any, error) {
	n, ok := asFloat(value)
	if !ok {
		return nil, violation(c, value, "must be numeric, got %T", value)
	}
	if n > c.Bound {
		return nil, violation(c, value, "must be at most %v, got %v", c.Bound, n)
	}
	return value, nil
}

// Choice requires the value to be one of Options. Comparison is
// case-sensitive for strings unless FoldCase is set; non-string values
// compare with ==.
type Choice struct {
	Options  []any
	FoldCase bool
}

func (c Choice) Describe() string { return fmt.Sprintf("one of %v", c.Options) }

func (c Choice) Validate(value any) (any, error) {
	for _, opt := range c.Options {
		if opt == value {
			return value, nil
		}
		if c.FoldCase {
			s, sok := value.(string)
			o, ook := opt.(string)
			if sok && ook && strings.EqualFold(s, o) {
				return opt, nil
			}
		}
	}
	return nil, violation(c, value, "must be one of %v, got %v", c.Options, value)
}

// Pattern requires a string that fully matches a regular expression.
// Construct with NewPattern so the expression is compiled (and anchored)
// once at registration time.
type Pattern struct {
	Expr string
	re   *regexp.Regexp
}

// NewPattern compiles expr for full-string matching. Registration-time
// call sites pass literals, so a bad expression is a programming error.
func NewPattern(expr string) Pattern {
	return Pattern{Expr: expr, re: regexp.MustCompile(`\A(?:` + expr + `)\z`)}
}

func (c Pattern) Describe() string { return fmt.Sprintf("pattern %q", c.Expr) }

func (c Pattern) Validate(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, violation(c, value, "must be string, got %T", value)
	}
	re := c.re
	if re == nil {
		re = regexp.MustCompile(`\A(?:` + c.Expr + `)\z`)
	}
	if !re.MatchString(s) {
		return nil, violation(c, value, "must match pattern %q, got %q", c.Expr, s)
	}
	return value, nil
}

// Str requires a string, with optional length bounds (0 means unbounded).
type Str struct {
	MinLength int
	MaxLength int
}

func (c Str) Describe() string {
	switch {
	case c.MinLength > 0 && c.MaxLength > 0:
		return fmt.Sprintf("string (len %d..%d)", c.MinLength, c.MaxLength)
	case c.MaxLength > 0:
		return fmt.Sprintf("string (len <= %d)", c.MaxLength)
	case c.MinLength > 0:
		return fmt.Sprintf("string (len >= %d)", c.MinLength)
	default:
		return "string"
	}
}

func (c Str) Validate(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, violation(c, value, "must be string, got %T", value)
	}
	if c.MinLength > 0 && len(s) < c.MinLength {
		return nil, violation(c, value, "string too short (min %d), got length %d", c.MinLength, len(s))
	}
	if c.MaxLength > 0 && len(s) > c.MaxLength {
		return nil, violation(c, value, "string too long (max %d), got length %d", c.MaxLength, len(s))
	}
	return value, nil
}

// Int requires an integer. Whole floats and digit strings are normalized
// to int, matching what JSON decoding and CLI layers hand us.
type Int struct{}

func (c Int) Describe() string { return "integer" }

func (c Int) Validate(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
		return nil, violation(c, value, "must be int, got %v", v)
	case float32:
		if float64(v) == math.Trunc(float64(v)) {
			return int(v), nil
		}
		return nil, violation(c, value, "must be int, got %v", v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, violation(c, value, "must be int, got %q", v)
		}
		return n, nil
	default:
		return nil, violation(c, value, "must be int, got %T", value)
	}
}

// Float requires a numeric value and normalizes it to float64.
type Float struct{}

func (c Float) Describe() string { return "float" }

func (c Float) Validate(value any) (any, error) {
	n, ok := asFloat(value)
	if !ok {
		return nil, violation(c, value, "must be float or int, got %T", value)
	}
	return n, nil
}

// Bool requires a boolean.
type Bool struct{}

func (c Bool) Describe() string { return "boolean" }

func (c Bool) Validate(value any) (any, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, violation(c, value, "must be bool, got %T", value)
	}
	return b, nil
}

// Dimensions validates a "WIDTHxHEIGHT" string against total-pixel and
// aspect-ratio bounds. Presets map friendly names ("square", "portrait")
// to concrete dimension strings; the normalized "WxH" form is returned.
type Dimensions struct {
	MinPixels      int
	MaxPixels      int
	MinAspectRatio float64
	MaxAspectRatio float64
	Presets        map[string]string
}

func (c Dimensions) Describe() string {
	return fmt.Sprintf("dimensions (pixels %d..%d, aspect %.3f..%.3f)", c.MinPixels, c.MaxPixels, c.MinAspectRatio, c.MaxAspectRatio)
}

func (c Dimensions) Validate(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, violation(c, value, "must be string, got %T", value)
	}
	if preset, found := c.Presets[s]; found {
		s = preset
	}
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return nil, violation(c, value, "invalid dimension format %q: expected WIDTHxHEIGHT", s)
	}
	width, werr := strconv.Atoi(parts[0])
	height, herr := strconv.Atoi(parts[1])
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return nil, violation(c, value, "invalid dimension format %q: width and height must be positive integers", s)
	}
	pixels := width * height
	if pixels < c.MinPixels || pixels > c.MaxPixels {
		return nil, violation(c, value, "total pixels %d outside valid range [%d, %d]", pixels, c.MinPixels, c.MaxPixels)
	}
	aspect := float64(width) / float64(height)
	if aspect < c.MinAspectRatio || aspect > c.MaxAspectRatio {
		return nil, violation(c, value, "aspect ratio %.3f outside valid range [%.3f, %.3f]", aspect, c.MinAspectRatio, c.MaxAspectRatio)
	}
	return fmt.Sprintf("%dx%d", width, height), nil
}
