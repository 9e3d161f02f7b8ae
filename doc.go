// Package caff reads and writes CAFF archives byte for byte.
//
// An archive is a fixed 54-byte header followed by a body:
//   - Header: signature, two version triplets, a format identifier, the
//     obfuscation key, an optional preview image descriptor and padding
//   - Body: an entry count, one metadata record per entry, the concatenated
//     payloads, then any trailing bytes
//
// Most body fields are obfuscated by XOR with the key from the header.
// Regions whose meaning is unknown are carried as [Padding] and written
// back unchanged, so decoding and re-encoding reproduces the input exactly.
//
// # Quick Start
//
// Decode an archive and list its entries:
//
//	a, err := caff.ReadFile("assets.caff")
//	if err != nil {
//	    return err
//	}
//	for i, e := range a.Body.Entries() {
//	    fmt.Println(i, e.Metadata.FileName, len(e.Data))
//	}
//
// Write it back:
//
//	err = caff.WriteFile("copy.caff", a)
//
// # Diagnostics
//
// Inspect malformed captures with a lenient magic check and an observer:
//
//	a, err := caff.Read(r,
//	    caff.WithMagicCheck(caff.MagicCheckLenient),
//	    caff.WithLogger(logger),
//	    caff.WithObserver(func(ev caff.Event) { ... }),
//	)
//
// Observers and loggers never change the outcome of a call.
package caff
