// SPDX-License-Identifier: MPL-2.0

package rule

import (
	"regexp"
	"strconv"
	"strings"

	"kenshin-cli/internal/issue"
)

// Accepted date shapes: exactly eight digits, or year/month/day with the
// same separator between both parts. Mixed or half-applied separators are
// ambiguous and rejected.
var (
	dateCompact   = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	dateSeparated = regexp.MustCompile(`^(\d{4})([/-])(\d{1,2})([/-])(\d{1,2})$`)
)

// convert applies a named conversion to a raw value. An empty raw value
// converts to absent (ok=false) rather than an error; a malformed value
// fails with a ConversionError carrying the raw input.
func convert(params *ConversionParams, field, raw string) (value string, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, nil
	}

	fail := func(cause error) (string, bool, error) {
		return "", false, &issue.ConversionError{Conversion: params.Type, Field: field, RawValue: raw, Cause: cause}
	}

	switch params.Type {
	case "to_integer":
		n, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return fail(convErr)
		}
		return strconv.Itoa(n), true, nil

	case "to_date_yyyymmdd":
		if m := dateCompact.FindStringSubmatch(raw); m != nil {
			return m[1] + m[2] + m[3], true, nil
		}
		if m := dateSeparated.FindStringSubmatch(raw); m != nil && m[2] == m[4] {
			return m[1] + pad2(m[3]) + pad2(m[5]), true, nil
		}
		return fail(nil)

	case "to_boolean":
		switch strings.ToLower(raw) {
		case "true", "1", "yes", "y":
			return "true", true, nil
		case "false", "0", "no", "n":
			return "false", true, nil
		}
		return fail(nil)

	case "round":
		f, convErr := strconv.ParseFloat(raw, 64)
		if convErr != nil {
			return fail(convErr)
		}
		return strconv.FormatFloat(roundTo(f, params.Digits), 'f', -1, 64), true, nil
	}

	// Unknown types are rejected at load time.
	return fail(nil)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func roundTo(f float64, digits int) float64 {
	shift := 1.0
	for i := 0; i < digits; i++ {
		shift *= 10
	}
	if f >= 0 {
		return float64(int64(f*shift+0.5)) / shift
	}
	return float64(int64(f*shift-0.5)) / shift
}
