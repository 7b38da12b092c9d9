// SPDX-License-Identifier: MIT

// Package tntp reads and writes the line-oriented TNTP transportation files:
// demand (OD) matrices, node coordinate tables, network link tables and flat
// parameter vectors.
//
// A TNTP demand file looks like:
//
//	<NUMBER OF ZONES> 3
//	<TOTAL OD FLOW> 60.0
//	<END OF METADATA>
//
//	Origin  1
//	        1 :             0.0;         2 :            10.0;         3 :            20.0;
//	Origin  2
//	...
//
// Comments start with '~' and run to the end of the line; blank lines are
// ignored everywhere. The reader is a three-state machine
// (metadata → awaiting origin → reading destinations); it aborts on the first
// malformed line with a *FormatError and never returns a partial matrix.
// Disagreement between the declared and computed totals, or missing metadata
// tags, only produce warnings.
//
// Zone identifiers are 1-based in files and in the DemandMatrix API; the
// backing matrix.Dense is 0-based.
package tntp
