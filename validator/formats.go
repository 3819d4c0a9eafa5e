package validator

import (
	"encoding/base64"
	"math"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/erraggy/oaskit/internal/equalutil"
	"github.com/erraggy/oaskit/internal/stringutil"
	"github.com/shopspring/decimal"
)

// formatChecker validates values of one format. Values of a type the format
// does not apply to pass.
type formatChecker struct {
	valid func(v any) bool
}

func stringFormat(fn func(string) bool) formatChecker {
	return formatChecker{valid: func(v any) bool {
		s, ok := v.(string)
		return !ok || fn(s)
	}}
}

func numberFormat(fn func(decimal.Decimal) bool) formatChecker {
	return formatChecker{valid: func(v any) bool {
		d, ok := equalutil.ToDecimal(v)
		return !ok || fn(d)
	}}
}

var formats = map[string]formatChecker{
	"date":          stringFormat(isDate),
	"date-time":     stringFormat(isDateTime),
	"time":          stringFormat(isTime),
	"email":         stringFormat(stringutil.IsValidEmail),
	"uuid":          stringFormat(stringutil.IsValidUUID),
	"uri":           stringFormat(isURI),
	"uri-reference": stringFormat(isURIReference),
	"hostname":      stringFormat(stringutil.IsValidHostname),
	"ipv4":          stringFormat(isIPv4),
	"ipv6":          stringFormat(isIPv6),
	"byte":          stringFormat(isBase64),
	"regex":         stringFormat(isRegex),
	"int32":         numberFormat(intRange(math.MinInt32, math.MaxInt32)),
	"int64":         numberFormat(intRange(math.MinInt64, math.MaxInt64)),
	"float":         numberFormat(floatRange(math.MaxFloat32)),
	"double":        numberFormat(floatRange(math.MaxFloat64)),
}

func isDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func isDateTime(s string) bool {
	_, err := time.Parse(time.RFC3339Nano, strings.ToUpper(s))
	return err == nil
}

// isTime accepts an RFC 3339 full-time: 15:04:05 with optional fraction and
// a required offset.
func isTime(s string) bool {
	_, err := time.Parse("15:04:05.999999999Z07:00", strings.ToUpper(s))
	return err == nil
}

func isURI(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

func isURIReference(s string) bool {
	_, err := url.Parse(s)
	return err == nil
}

func isIPv4(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}

func isIPv6(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is6() && addr.Zone() == ""
}

func isBase64(s string) bool {
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}

func isRegex(s string) bool {
	_, err := regexp.Compile(s)
	return err == nil
}

func intRange(lo, hi int64) func(decimal.Decimal) bool {
	low, high := decimal.NewFromInt(lo), decimal.NewFromInt(hi)
	return func(d decimal.Decimal) bool {
		return d.IsInteger() && d.GreaterThanOrEqual(low) && d.LessThanOrEqual(high)
	}
}

func floatRange(limit float64) func(decimal.Decimal) bool {
	bound := decimal.NewFromFloat(limit)
	return func(d decimal.Decimal) bool {
		return d.Abs().LessThanOrEqual(bound)
	}
}
