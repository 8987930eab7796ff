// SPDX-License-Identifier: MPL-2.0

// Package document defines the six regulator document kinds and turns
// intermediate records into their XML form. The two CDA kinds (hc08, hg08)
// share a ClinicalDocument header; the settlement kinds (cc08, gc08) are
// claim documents; index and summary are the aggregate documents at the
// archive root. The package also parses the handful of values the
// aggregator reads back out of generated documents.
package document
