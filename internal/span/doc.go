// Package span provides an immutable view over one or more byte buffers.
//
// A Span lets producers hand scattered data (a header slice plus a payload
// slice, for example) to writers without concatenating it first. Writers
// iterate the fragments in order via Spans or flush them in one vectored
// write via WriteTo.
package span
