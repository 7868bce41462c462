// Package mediatypes defines which video containers the player accepts and
// maps between file extensions and MIME types.
//
// It has no dependencies beyond the standard library so upload, handlers
// and the drop-folder watcher can share it without import cycles.
//
// # Allow-list
//
// The accepted MIME types are the ones browsers report for the supported
// containers, plus the registered names some platforms use instead:
//
//	mediatypes.IsAllowed("video/mp4")       // true
//	mediatypes.IsAllowed("video/quicktime") // true, same container as video/mov
//	mediatypes.IsAllowed("video/x-flv")     // false
//
// # Extensions
//
// Use MimeForExt when a client does not send a type, for example when a
// file lands in the drop folder:
//
//	ext := strings.ToLower(filepath.Ext(name))
//	mime := mediatypes.MimeForExt(ext) // "" when unsupported
package mediatypes
