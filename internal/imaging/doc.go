// Package imaging decodes, transforms and re-encodes images.
//
// The package implements the pixel side of an image modification request:
//
//	bytes --Decode--> PixelBuffer --Apply--> PixelBuffer --Compress--> bytes
//	                                                                    |
//	                                                 WriteFile / EncodeBase64
//
// # Buffer Ownership
//
// A PixelBuffer has a single owner. Resize, Grayscale, Copy, Apply and
// Compress take ownership of their input and release it once their own
// output exists, so no more than two frames are alive at any point. Reusing
// a released buffer fails with ErrReleased.
//
// # Pixel Format
//
// Frames are stored as non-premultiplied 8-bit RGBA (image.NRGBA) with a
// zero origin, so colour transforms never disturb the alpha channel.
//
// # Transforms
//
// Apply runs at most one resize and at most one grayscale conversion, in that
// order:
//   - Resize: new size is floor(W*r) x floor(H*r) for r strictly inside
//     (0,1), resampled with a bilinear filter. Other ratios are a no-op.
//   - Grayscale: every pixel becomes (L, L, L, A) with
//     L = 0.3*R + 0.59*G + 0.11*B, evaluated as a 4x5 colour matrix.
//
// # Output
//
// All output uses the JPEG codec. The [0,1] quality factor maps to the
// codec scale as round(q*100). Files are named <epoch-millis>.JPEG and are
// never overwritten.
//
// # Thread Safety
//
// Functions hold no shared mutable state and may be called concurrently on
// different buffers. A single PixelBuffer must not be shared between
// goroutines.
package imaging
