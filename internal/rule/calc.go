// SPDX-License-Identifier: MPL-2.0

package rule

import (
	"fmt"
	"strconv"
)

// calcFunc computes a derived value from named numeric parameters. The
// result is the canonical string form written to the output field.
type calcFunc func(params map[string]float64) (string, error)

// calculations is the registry of named computations available to the
// calculate rule kind.
var calculations = map[string]calcFunc{
	"bmi": calcBMI,
}

// calcBMI computes body mass index from weight_kg and height_cm, rounded to
// two decimals.
func calcBMI(params map[string]float64) (string, error) {
	weight, ok := params["weight_kg"]
	if !ok {
		return "", fmt.Errorf("bmi: missing parameter weight_kg")
	}
	heightCm, ok := params["height_cm"]
	if !ok {
		return "", fmt.Errorf("bmi: missing parameter height_cm")
	}
	if heightCm == 0 {
		return "", fmt.Errorf("bmi: height is zero")
	}
	heightM := heightCm / 100
	bmi := roundTo(weight/(heightM*heightM), 2)
	return strconv.FormatFloat(bmi, 'f', -1, 64), nil
}
