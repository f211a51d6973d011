// Package res holds static content shown by the analyzer UI.
package res

// AboutContent contains the Markdown content for the About dialog.
// This is maintained separately for easy updates.
const AboutContent = `**ASA-2000 Reverse Audio Signal Analyzer**

Loads an audio file, reverses it and plays it back while the scope follows
the playback cursor.

**Display:**
- Waveform channel: amplitude around the cursor, peak decimated
- Spectrum channel: smoothed magnitude on a logarithmic frequency axis

**Inputs:** MP3, WAV, FLAC, OGG

**Output:** 16-bit PCM WAV

**Keys:** Ctrl+O open, Ctrl+R reverse, Ctrl+E export, Space play/pause
`
