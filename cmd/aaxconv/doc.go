// Command aaxconv converts Audible AAX and AAXC audiobooks into open formats.
//
// The convert command decrypts each input with ffmpeg, tags the result from
// the source metadata, and writes either one file per chapter plus an M3U
// playlist or a single file carrying the whole book. The remaining commands
// inspect the environment: deps reports the external tools, history lists
// past conversions from the ledger, and config manages the TOML file.
package main
