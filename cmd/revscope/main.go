// Package main is the production entry point for the ASA-2000 reverse audio
// signal analyzer.
//
// revscope decodes an audio file, reverses it, and plays it back while a
// two-channel scope shows the waveform around the playback cursor and its
// frequency spectrum.
//
// Build:
//
//	go build -o build/revscope ./cmd/revscope
//
// Run:
//
//	./build/revscope [file]
package main

func main() {
	Execute()
}
