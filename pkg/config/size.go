package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ByteSize is a byte count that accepts human suffixes in config files
type ByteSize int64

var sizeUnits = []struct {
	suffix string
	factor float64
}{
	{"TiB", 1 << 40},
	{"GiB", 1 << 30},
	{"MiB", 1 << 20},
	{"KiB", 1 << 10},
	{"TB", 1e12},
	{"GB", 1e9},
	{"MB", 1e6},
	{"KB", 1e3},
	{"B", 1},
}

// ParseSize parses "14.95GiB", "500MB", "1024" and similar. Fractions are
// truncated to whole bytes.
func ParseSize(s string) (ByteSize, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("empty size")
	}

	number, factor := raw, 1.0
	for _, u := range sizeUnits {
		if strings.HasSuffix(strings.ToLower(raw), strings.ToLower(u.suffix)) {
			number = strings.TrimSpace(raw[:len(raw)-len(u.suffix)])
			factor = u.factor
			break
		}
	}

	if factor == 1 {
		if n, err := strconv.ParseInt(number, 10, 64); err == nil {
			return ByteSize(n), nil
		}
	}

	f, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	bytes := f * factor
	if bytes > math.MaxInt64 || bytes < math.MinInt64 {
		return 0, fmt.Errorf("size %q out of range", s)
	}
	return ByteSize(bytes), nil
}

// String renders the size with the largest binary unit that divides it
// exactly, otherwise as plain bytes, so it parses back to the same value.
func (b ByteSize) String() string {
	for _, u := range sizeUnits[:4] {
		f := int64(u.factor)
		if b != 0 && int64(b)%f == 0 {
			return fmt.Sprintf("%d%s", int64(b)/f, u.suffix)
		}
	}
	return strconv.FormatInt(int64(b), 10)
}

// MarshalText lets TOML output show readable sizes
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText accepts the same forms as ParseSize
func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := ParseSize(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// HumanSize formats a byte count for display, e.g. "1.5 GiB"
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit && n > -unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit || m <= -unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
