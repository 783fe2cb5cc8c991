// Package wfs serves a logfs image through bazil.org/fuse.
//
// Dir and File nodes carry only their path inside the image. Every kernel
// request resolves that path against the log again, so a node whose entry
// was removed answers ENOENT rather than stale data. Bazil serves requests
// on many goroutines while the engine is single-threaded, so FS holds one
// mutex around every engine call.
//
// Engine errors are translated to errno values by Errno. Errors the engine
// does not define are logged and reported as EIO.
package wfs
