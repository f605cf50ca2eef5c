// Package mediatypes holds the photo extension table shared by the scanner,
// the image preparation code and the generator.
//
// It has no dependencies on other photoframe packages so it can be imported
// anywhere without cycles.
//
//	if mediatypes.IsImage(entry.Name()) {
//	    // index it
//	}
//	mime := mediatypes.GetMimeType(path) // e.g. "image/jpeg"
package mediatypes
