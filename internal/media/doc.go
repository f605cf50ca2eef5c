// Package media prepares photos for upload to the text generator.
//
// Prepare reads a photo, applies EXIF orientation and downsizes anything
// larger than MaxUploadDimension so model calls stay small. HEIC and HEIF
// go through libvips when it has been initialized with InitVips; all other
// formats use the pure-Go decoders. A photo that cannot be decoded is sent
// as-is.
package media
