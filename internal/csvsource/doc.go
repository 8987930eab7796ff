// SPDX-License-Identifier: MPL-2.0

// Package csvsource is the row source for the conversion pipeline: it reads
// a delimited text file according to a named CSV profile and yields decoded
// rows keyed by column name, with the declared header checked against the
// profile's required columns.
package csvsource
