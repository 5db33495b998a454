package checksum

import (
	"strings"
	"testing"
)

func TestSum_SHA256(t *testing.T) {
	// Known digest of "hello"
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

	got, err := Sum([]byte("hello"), SHA256)
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSum_MD5(t *testing.T) {
	want := "5d41402abc4b2a76b9719d911017c592"

	got, err := Sum([]byte("hello"), MD5)
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSum_UnsupportedAlgorithm(t *testing.T) {
	if _, err := Sum([]byte("x"), Algorithm("crc32")); err == nil {
		t.Error("expected error for unsupported algorithm")
	}
}

func TestStream_MatchesSum(t *testing.T) {
	data := strings.Repeat("content line\n", 1000)

	fromSum, err := Sum([]byte(data), SHA256)
	if err != nil {
		t.Fatal(err)
	}
	fromStream, err := Stream(strings.NewReader(data), SHA256)
	if err != nil {
		t.Fatal(err)
	}
	if fromSum != fromStream {
		t.Errorf("Sum and Stream disagree: %s vs %s", fromSum, fromStream)
	}
}

func TestStream_Empty(t *testing.T) {
	got, err := Stream(strings.NewReader(""), SHA256)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("expected empty-input digest %s, got %s", want, got)
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported(SHA256) || !IsSupported(MD5) {
		t.Error("expected sha256 and md5 to be supported")
	}
	if IsSupported(Algorithm("crc32")) {
		t.Error("crc32 should not be supported")
	}
}
