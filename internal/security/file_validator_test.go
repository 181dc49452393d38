package security

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSmallFilesSkipValidation(t *testing.T) {
	fv := NewFileValidator(1) // 1KB threshold
	path := writeTemp(t, "Tiny.java", []byte{0x00, 0x01, 0x02})
	if err := fv.ValidateJavaFile(path); err != nil {
		t.Errorf("files under the threshold must pass: %v", err)
	}
}

func TestValidJavaSourcePasses(t *testing.T) {
	fv := &FileValidator{ValidationThreshold: 10, HeaderSize: 64 * 1024}
	src := []byte("package com.shop;\n\npublic class OrderService {\n}\n")
	path := writeTemp(t, "OrderService.java", src)
	if err := fv.ValidateJavaFile(path); err != nil {
		t.Errorf("real Java source must pass: %v", err)
	}
}

func TestBinaryContentRejected(t *testing.T) {
	fv := &FileValidator{ValidationThreshold: 10, HeaderSize: 64 * 1024}
	binary := bytes.Repeat([]byte{0x00, 0x01, 0x02, 0x03}, 256)
	path := writeTemp(t, "Fake.java", binary)
	if err := fv.ValidateJavaFile(path); err == nil {
		t.Error("binary content must be rejected")
	}
}

func TestZipSignatureRejected(t *testing.T) {
	fv := &FileValidator{ValidationThreshold: 10, HeaderSize: 64 * 1024}
	content := append([]byte{0x50, 0x4B, 0x03, 0x04}, []byte("package com.shop; class A {}")...)
	path := writeTemp(t, "Archive.java", content)
	if err := fv.ValidateJavaFile(path); err == nil {
		t.Error("jar/zip signature must be rejected even with Java text after it")
	}
}

func TestClassFileSignatureRejected(t *testing.T) {
	fv := &FileValidator{ValidationThreshold: 10, HeaderSize: 64 * 1024}
	content := append([]byte{0xCA, 0xFE, 0xBA, 0xBE}, bytes.Repeat([]byte("A"), 100)...)
	path := writeTemp(t, "Compiled.java", content)
	if err := fv.ValidateJavaFile(path); err == nil {
		t.Error("compiled class bytes must be rejected")
	}
}

func TestTextWithoutJavaPatternsRejected(t *testing.T) {
	fv := &FileValidator{ValidationThreshold: 10, HeaderSize: 64 * 1024}
	path := writeTemp(t, "Notes.java", []byte("just some plain notes\nnothing resembling source\n"))
	if err := fv.ValidateJavaFile(path); err == nil {
		t.Error("plain text with no Java patterns must be rejected")
	}
}

func TestMissingFile(t *testing.T) {
	fv := NewFileValidator(1)
	if err := fv.ValidateJavaFile(filepath.Join(t.TempDir(), "gone.java")); err == nil {
		t.Error("missing file must error")
	}
}
