// Package persistence implements the on-disk envelope for fitted feature
// pipelines.
//
// A model file is a small self-describing container: a magic number and
// format version, the name of the codec that produced the document payload,
// the name of the compression applied to it, the payload itself, and a CRC32
// checksum over everything preceding it. Readers select codec and
// decompressor by the recorded names, so defaults can change without
// breaking old files.
package persistence
