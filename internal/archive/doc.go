// SPDX-License-Identifier: MPL-2.0

// Package archive assembles the submission archive and re-verifies it.
//
// The archive layout is fixed: a single root directory named after the
// archive, holding index.xml and summary.xml, per-record documents under
// DATA/, settlement documents under CLAIMS/, and the full schema set under
// XSD/ (with the shared datatypes under XSD/coreschemas/). Verification
// validates every packaged XML file against the schemas bundled inside the
// same archive, so the check matches exactly what a recipient validates
// against.
package archive
