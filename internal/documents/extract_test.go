package documents

import (
	"strings"
	"testing"
)

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText([]byte("  GST returns are due monthly.\n"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "GST returns are due monthly." {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractTextEmpty(t *testing.T) {
	if _, err := ExtractText(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestExtractTextBinaryRejected(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01, 0x02, 0x03}
	_, err := ExtractText(data)
	if err == nil {
		t.Fatal("expected error for binary input")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("error = %v", err)
	}
}

func TestExtractTextCorruptPDF(t *testing.T) {
	// Carries the PDF magic but no valid structure behind it.
	_, err := ExtractText([]byte("%PDF-1.7 not really a pdf"))
	if err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}

func TestExtractTextUTF8(t *testing.T) {
	text, err := ExtractText([]byte("दुकान की वापसी नीति"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "दुकान की वापसी नीति" {
		t.Fatalf("text = %q", text)
	}
}
