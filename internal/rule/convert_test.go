// SPDX-License-Identifier: MPL-2.0

package rule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kenshin-cli/internal/issue"
)

func TestConvertDate(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"2024/5/27", "20240527"},
		{"2024-05-27", "20240527"},
		{"20240527", "20240527"},
		{"1998/12/1", "19981201"},
	}
	for _, tc := range cases {
		v, ok, err := convert(&ConversionParams{Type: "to_date_yyyymmdd"}, "birth_date", tc.raw)
		require.NoError(t, err, tc.raw)
		require.True(t, ok)
		assert.Equal(t, tc.want, v, tc.raw)
	}
}

func TestConvertDateMalformed(t *testing.T) {
	_, _, err := convert(&ConversionParams{Type: "to_date_yyyymmdd"}, "birth_date", "May 27, 2024")

	var ce *issue.ConversionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "May 27, 2024", ce.RawValue)
}

func TestConvertDateRejectsAmbiguousShapes(t *testing.T) {
	for _, raw := range []string{"198011", "1980112", "1980/01-02", "1980-01/02", "1980/0102"} {
		_, _, err := convert(&ConversionParams{Type: "to_date_yyyymmdd"}, "birth_date", raw)

		var ce *issue.ConversionError
		require.True(t, errors.As(err, &ce), raw)
		assert.Equal(t, raw, ce.RawValue)
	}
}

func TestConvertEmptyIsAbsentNotError(t *testing.T) {
	for _, typ := range []string{"to_integer", "to_date_yyyymmdd", "to_boolean", "round"} {
		_, ok, err := convert(&ConversionParams{Type: typ}, "f", "   ")
		require.NoError(t, err, typ)
		assert.False(t, ok, typ)
	}
}

func TestConvertInteger(t *testing.T) {
	v, ok, err := convert(&ConversionParams{Type: "to_integer"}, "points", "0042")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "42", v)

	_, _, err = convert(&ConversionParams{Type: "to_integer"}, "points", "42.5")
	var ce *issue.ConversionError
	require.True(t, errors.As(err, &ce))
}

func TestConvertBoolean(t *testing.T) {
	for raw, want := range map[string]string{"TRUE": "true", "1": "true", "y": "true", "no": "false", "0": "false"} {
		v, ok, err := convert(&ConversionParams{Type: "to_boolean"}, "flag", raw)
		require.NoError(t, err, raw)
		require.True(t, ok)
		assert.Equal(t, want, v, raw)
	}
}

func TestConvertRound(t *testing.T) {
	v, ok, err := convert(&ConversionParams{Type: "round", Digits: 1}, "waist", "85.26")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "85.3", v)

	v, _, err = convert(&ConversionParams{Type: "round", Digits: 0}, "cost", "1234.5")
	require.NoError(t, err)
	assert.Equal(t, "1235", v)
}
