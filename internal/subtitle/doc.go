// Package subtitle rewrites the style table of ASS subtitle documents.
//
// A document is processed in three spans. Lines up to and including the
// first Format row are copied as-is, and the Format row fixes the field
// positions for the rest of the file. Style rows up to the [Events] header
// get their Fontsize and Outline fields increased (or are replaced wholesale
// for tracks converted from plain-text codecs). The events are copied
// byte-for-byte.
//
// Numeric fields are added as exact decimals so the source's formatting is
// kept: "2" becomes "7", "1.50" becomes "6.50".
package subtitle
