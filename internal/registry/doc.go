// Package registry holds the decoder, encoder, demuxer and muxer descriptors
// compiled into the binary.
//
// A Registry is built explicitly by the application's bootstrap code: each
// plugin package exposes a Register function, the bootstrap calls them in a
// fixed order and then calls Freeze. After Freeze the registry is read-only,
// so lookups from any goroutine need no locking. Registration order is
// significant: probing resolves equal scores in favour of the demuxer that
// registered first.
package registry
