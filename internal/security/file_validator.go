package security

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// FileValidator screens large files before they reach the parser.
// A disguised binary with a .java extension wastes a parse slot and
// can balloon memory, so anything over the threshold gets a header
// check first.
type FileValidator struct {
	ValidationThreshold int64 // files larger than this are validated first
	HeaderSize          int64 // size of header to read for validation
}

func NewFileValidator(thresholdKB int64) *FileValidator {
	return &FileValidator{
		ValidationThreshold: thresholdKB * 1024,
		HeaderSize:          64 * 1024,
	}
}

// ValidateJavaFile reads only the header and checks the file is
// plausible Java source. Small files are accepted without reading.
func (fv *FileValidator) ValidateJavaFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Size() <= fv.ValidationThreshold {
		return nil
	}

	header := make([]byte, fv.HeaderSize)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read header: %w", err)
	}
	header = header[:n]

	if err := checkKnownMagicBytes(header); err != nil {
		return err
	}

	if isBinaryData(header) {
		return errors.New("file appears to be binary (.java extension on binary content)")
	}

	return checkJavaPatterns(header)
}

// Common container formats that end up renamed to .java by mistake
// (jar-in-source-tree, image assets, archives).
var knownMagic = [][]byte{
	{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, // PNG
	{0xFF, 0xD8, 0xFF},                               // JPEG
	{0x50, 0x4B, 0x03, 0x04},                         // ZIP / JAR
	{0x25, 0x50, 0x44, 0x46, 0x2D},                   // PDF
	{0x4D, 0x5A},                                     // PE executable
	{0xCA, 0xFE, 0xBA, 0xBE},                         // Java class file
}

func checkKnownMagicBytes(header []byte) error {
	for _, magic := range knownMagic {
		if bytes.HasPrefix(header, magic) {
			return errors.New("known binary signature found (file may be disguised)")
		}
	}
	return nil
}

// isBinaryData checks if the header contains binary data.
func isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	// Control characters (0-31 except tab, LF, CR) and DEL
	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}

	// If more than 30% non-printable, consider binary
	ratio := float64(nonPrintable) / float64(len(data))
	return ratio > 0.3
}

var javaPatterns = [][]byte{
	[]byte("package "),
	[]byte("import "),
	[]byte("public class "),
	[]byte("class "),
	[]byte("interface "),
	[]byte("enum "),
	[]byte("record "),
	[]byte("@"),
	[]byte("public "),
	[]byte("private "),
	[]byte("protected "),
}

func checkJavaPatterns(header []byte) error {
	for _, pattern := range javaPatterns {
		if bytes.Contains(header, pattern) {
			return nil
		}
	}
	return errors.New("no Java patterns found (package, import, class, etc.)")
}
