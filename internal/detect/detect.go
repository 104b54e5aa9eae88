// Package detect sniffs file content to find the real type of a file when
// its extension is missing or lies.
package detect

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// HeaderSize is how many leading bytes are inspected
const HeaderSize = 64

// Signature is what the header of a file says it is
type Signature struct {
	// Extension is the canonical extension for the detected format, "" if unknown
	Extension string
	// Executable is set for PE, ELF, Mach-O and wasm binaries
	Executable bool
	// Binary is set when the content is not text
	Binary bool
}

// Known reports whether a format was recognised
func (s Signature) Known() bool {
	return s.Extension != ""
}

type magic struct {
	pattern []byte
	offset  int
	ext     string
}

var fixedSignatures = []magic{
	{[]byte("\x89PNG\r\n\x1a\n"), 0, "png"},
	{[]byte("\xff\xd8\xff"), 0, "jpg"},
	{[]byte("GIF87a"), 0, "gif"},
	{[]byte("GIF89a"), 0, "gif"},
	{[]byte("%PDF"), 0, "pdf"},
	{[]byte("%!PS-Adobe-"), 0, "ps"},
	{[]byte("\x1f\x8b\x08"), 0, "gz"},
	{[]byte("\x1a\x45\xdf\xa3"), 0, "mkv"},
	{[]byte("ID3"), 0, "mp3"},
	{[]byte("OggS"), 0, "ogg"},
	{[]byte("fLaC"), 0, "flac"},
	{[]byte("\x00\x00\x01\x00"), 0, "ico"},
	{[]byte("II*\x00"), 0, "tif"},
	{[]byte("MM\x00*"), 0, "tif"},
	{[]byte("Rar!\x1a\x07"), 0, "rar"},
	{[]byte("7z\xbc\xaf\x27\x1c"), 0, "7z"},
}

var executableSignatures = []magic{
	{[]byte("MZ"), 0, "exe"},
	{[]byte("\x7fELF"), 0, "elf"},
	{[]byte("\xca\xfe\xba\xbe"), 0, "mach-o"},
	{[]byte("\xcf\xfa\xed\xfe"), 0, "mach-o"},
	{[]byte("\xce\xfa\xed\xfe"), 0, "mach-o"},
	{[]byte("\xfe\xed\xfa\xcf"), 0, "mach-o"},
	{[]byte("\xfe\xed\xfa\xce"), 0, "mach-o"},
	{[]byte("\x00asm"), 0, "wasm"},
}

// Sniff reads the header of the file at path and identifies it
func Sniff(path string) (Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signature{}, err
	}
	defer f.Close()

	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Signature{}, fmt.Errorf("read header of %s: %w", path, err)
	}
	return SniffBytes(buf[:n]), nil
}

// SniffBytes identifies a file from its leading bytes
func SniffBytes(buf []byte) Signature {
	if len(buf) == 0 {
		return Signature{}
	}

	// Two-byte magics ("MZ", "BM") also start plenty of text files, so they
	// only count when the rest of the header looks like the real thing
	if ext := matchAny(buf, executableSignatures); ext != "" && (ext != "exe" || looksBinary(buf)) {
		return Signature{Extension: ext, Executable: true, Binary: true}
	}

	for _, detector := range []func([]byte) string{detectMP4, detectRIFF, detectZip, detectJSON} {
		if ext := detector(buf); ext != "" {
			return Signature{Extension: ext, Binary: ext != "json"}
		}
	}

	if ext := matchAny(buf, fixedSignatures); ext != "" {
		return Signature{Extension: ext, Binary: ext != "ps"}
	}
	if isBMP(buf) {
		return Signature{Extension: "bmp", Binary: true}
	}

	return Signature{Binary: looksBinary(buf)}
}

func matchAny(buf []byte, sigs []magic) string {
	for _, sig := range sigs {
		if hasAt(buf, sig.offset, sig.pattern) {
			return sig.ext
		}
	}
	return ""
}

func hasAt(buf []byte, offset int, pattern []byte) bool {
	return len(buf) >= offset+len(pattern) && bytes.Equal(buf[offset:offset+len(pattern)], pattern)
}

func detectMP4(buf []byte) string {
	if len(buf) < 12 || !hasAt(buf, 4, []byte("ftyp")) {
		return ""
	}
	switch string(buf[8:12]) {
	case "M4V ":
		return "m4v"
	case "M4A ":
		return "m4a"
	case "M4B ":
		return "m4b"
	case "qt  ":
		return "mov"
	case "heic", "heix", "mif1":
		return "heic"
	default:
		return "mp4"
	}
}

func detectRIFF(buf []byte) string {
	if len(buf) < 12 || !hasAt(buf, 0, []byte("RIFF")) {
		return ""
	}
	switch string(buf[8:12]) {
	case "WEBP":
		return "webp"
	case "WAVE":
		return "wav"
	case "AVI ":
		return "avi"
	}
	return ""
}

// detectZip tells office documents and Java/Android archives apart by the
// member names visible in the first local file header
func detectZip(buf []byte) string {
	if !hasAt(buf, 0, []byte("PK\x03\x04")) {
		return ""
	}
	switch {
	case bytes.Contains(buf, []byte("[Content_Types].xml")), bytes.Contains(buf, []byte("word/")):
		return "docx"
	case bytes.Contains(buf, []byte("xl/")):
		return "xlsx"
	case bytes.Contains(buf, []byte("ppt/")):
		return "pptx"
	case bytes.Contains(buf, []byte("AndroidManifest.xml")):
		return "apk"
	case bytes.Contains(buf, []byte("META-INF/")):
		return "jar"
	}
	return "zip"
}

// isBMP checks the magic plus the reserved header words, which are always zero
func isBMP(buf []byte) bool {
	return len(buf) >= 14 && hasAt(buf, 0, []byte("BM")) && bytes.Equal(buf[6:10], []byte{0, 0, 0, 0})
}

func detectJSON(buf []byte) string {
	buf = bytes.TrimPrefix(buf, []byte("\xef\xbb\xbf"))
	trimmed := bytes.TrimLeft(buf, " \t\r\n")
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return ""
	}
	if bytes.ContainsAny(trimmed, `":,`) && !bytes.ContainsRune(trimmed, 0) {
		return "json"
	}
	return ""
}

// looksBinary flags content with a NUL byte or more than 30% non-text bytes
func looksBinary(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	if bytes.IndexByte(buf, 0) >= 0 {
		return true
	}

	// High bytes are text only when they form valid UTF-8
	utf8Text := validUTF8Prefix(buf)
	nonText := 0
	for _, b := range buf {
		switch {
		case b == '\t', b == '\n', b == '\r':
		case b >= 0x20 && b <= 0x7e:
		case b >= 0x80 && utf8Text:
		default:
			nonText++
		}
	}
	return float64(nonText)/float64(len(buf)) > 0.30
}

// validUTF8Prefix tolerates a rune cut off by the header limit
func validUTF8Prefix(buf []byte) bool {
	for cut := 0; cut < utf8.UTFMax && cut < len(buf); cut++ {
		if utf8.Valid(buf[:len(buf)-cut]) {
			return true
		}
	}
	return false
}
