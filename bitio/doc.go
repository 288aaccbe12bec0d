// Package bitio implements byte- and bit-granular reads over an H.264 NAL
// unit payload, including emulation-prevention byte removal and the
// unsigned/signed Exp-Golomb decoders used throughout H.264 syntax.
//
// A [Reader] is a transient cursor over a borrowed byte slice: it never
// copies or retains the slice beyond the reads it performs, and it never
// fails. Reads past the end of the payload return zero; callers detect
// exhaustion with [Reader.NoMoreBits].
package bitio
