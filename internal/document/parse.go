// SPDX-License-Identifier: MPL-2.0

package document

import (
	"encoding/xml"
	"io"
	"strconv"
)

// SubjectCount reports the number of subjects in a generated data document:
// one per ClinicalDocument root, zero for anything else.
func SubjectCount(r io.Reader) int {
	root, ok := rootElement(r)
	if !ok || root != "ClinicalDocument" {
		return 0
	}
	return 1
}

// ClaimAmount extracts the claimed amount from a settlement document: the
// settlement/claimAmount value of a checkupClaim, or the
// settlementDetails/claimAmount value of a GuidanceClaimDocument. ok is
// false when the document carries no claim amount.
func ClaimAmount(r io.Reader) (float64, bool) {
	dec := xml.NewDecoder(r)
	var stack []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return 0, false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if !claimAmountPath(stack) {
				continue
			}
			for _, a := range t.Attr {
				if a.Name.Local != "value" {
					continue
				}
				v, err := strconv.ParseFloat(a.Value, 64)
				if err != nil {
					return 0, false
				}
				return v, true
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

func claimAmountPath(stack []string) bool {
	if len(stack) != 3 || stack[2] != "claimAmount" {
		return false
	}
	switch {
	case stack[0] == "checkupClaim" && stack[1] == "settlement":
		return true
	case stack[0] == "GuidanceClaimDocument" && stack[1] == "settlementDetails":
		return true
	}
	return false
}

func rootElement(r io.Reader) (string, bool) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, true
		}
	}
}
