// Package rslformat reads and writes sensor recordings in the RSL container format.
package rslformat

// RSL container format, version 2.
// Requirements.
//   1. A recording must be a single seekable file.
//   2. Metadata must be readable without scanning the sample region.
//   3. Fields that are only known at shutdown are backpatched in place.
//
//
//
// <name>.rsl: file header followed by continuous (chunkHeader, payload) pairs.
//
// fileHeader { // 20 bytes. all integers are little-endian.
//   id               uint32 // 'R','S','L','0'+version
//   version          int32
//   firstFrameOffset int32  // 0 until metadata is fully written, then patched.
//   streamCount      int32
//   coordinateSystem int32
// }
//
// chunkHeader { // 8 bytes. precedes every payload.
//   id   int32
//   size int32 // payload byte length.
// }
//
// Metadata chunks, in the order written at configure time:
//   deviceInfo       192 bytes
//   swInfo           32 bytes
//   capabilities     4 bytes per capability
//   motionIntrinsics 144 bytes
//   streamInfo       28 bytes per stream. frameCount is patched at stop.
//   properties       12 bytes per device option
//
// Per recorded sample:
//   sampleInfo 20 bytes // offset field holds the sampleInfo chunk position.
//   then one of:
//     frameInfo 48 bytes + sampleData chunk with the pixel payload
//     motionData 24 bytes
//     timeStampData 20 bytes
