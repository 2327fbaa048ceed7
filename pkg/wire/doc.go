// Package wire encodes and decodes native field payloads.
//
// The native layer exchanges each field as a packed, fixed-layout struct with
// a single member. The layout is little-endian with no padding:
//
//	INT32      4 bytes   (booleans: 0 = false, anything else = true)
//	INT64      8 bytes
//	FLOAT64    8 bytes   IEEE-754
//	STRING256  256 bytes NUL-padded, truncated at the first NUL on decode
//
// Decoders accept payloads longer than the layout (the native layer may
// deliver a padded buffer) and reject shorter ones.
package wire
