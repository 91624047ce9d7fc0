package textenc

import (
	"strings"
	"testing"
)

func TestDecodeUTF8WithBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Cena;Lokal\n1;M1")...)

	got := Decode(raw)
	if got.Encoding != EncodingUTF8BOM {
		t.Errorf("encoding = %q, want %q", got.Encoding, EncodingUTF8BOM)
	}
	if got.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %q, want %q", got.Confidence, ConfidenceHigh)
	}
	if strings.HasPrefix(got.Text, "\uFEFF") {
		t.Error("BOM was not stripped from decoded text")
	}
	if !strings.HasPrefix(got.Text, "Cena;Lokal") {
		t.Errorf("text = %q, want it to start with the header line", got.Text)
	}
}

func TestDecodePlainUTF8(t *testing.T) {
	got := Decode([]byte("Województwo;Gmina\nśląskie;Żory"))
	if got.Encoding != EncodingUTF8 {
		t.Errorf("encoding = %q, want %q", got.Encoding, EncodingUTF8)
	}
	if got.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %q, want %q", got.Confidence, ConfidenceHigh)
	}
	if !got.HasExtendedChars {
		t.Error("HasExtendedChars = false for text with Polish letters")
	}
}

func TestDecodeWindows1250(t *testing.T) {
	// 0xB9 = ą, 0x9C = ś, 0xB3 = ł in Windows-1250
	raw := []byte{'l', 'o', 'k', 'a', 'l', ';', 0xB9, 0x9C, 0xB3}

	got := Decode(raw)
	if got.Encoding != EncodingCP1250 {
		t.Fatalf("encoding = %q, want %q", got.Encoding, EncodingCP1250)
	}
	if !strings.HasSuffix(got.Text, "ąśł") {
		t.Errorf("text = %q, want suffix %q", got.Text, "ąśł")
	}
	if got.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %q, want %q (Polish letters present)", got.Confidence, ConfidenceHigh)
	}
}

func TestDecodeISO88592(t *testing.T) {
	// 0xB1 = ą, 0xB6 = ś, 0xBC = ź in ISO-8859-2
	raw := []byte{'l', 'o', 'k', 'a', 'l', ';', 0xB1, 0xB6, 0xBC}

	got := Decode(raw)
	if got.Encoding != EncodingISO88592 {
		t.Fatalf("encoding = %q, want %q", got.Encoding, EncodingISO88592)
	}
	if !strings.HasSuffix(got.Text, "ąśź") {
		t.Errorf("text = %q, want suffix %q", got.Text, "ąśź")
	}
}

func TestDecodePreMangledUTF8FallsThrough(t *testing.T) {
	// A replacement character in otherwise valid UTF-8 means some earlier
	// tool already lost data; strict UTF-8 must not claim it.
	got := Decode([]byte("lokal � nr 5"))
	if got.Encoding == EncodingUTF8 || got.Encoding == EncodingUTF8BOM {
		t.Errorf("encoding = %q, mangled input must not pass as clean UTF-8", got.Encoding)
	}
}

func TestDecodeNeverFails(t *testing.T) {
	valid := map[string]bool{
		EncodingUTF8BOM:   true,
		EncodingUTF8:      true,
		EncodingCP1250:    true,
		EncodingISO88592:  true,
		EncodingUTF8Lossy: true,
	}
	inputs := [][]byte{
		nil,
		{},
		{0x00},
		{0xFF, 0xFE, 0x00, 0x41},
		{0x81, 0x83, 0x90},
		[]byte("plain ascii"),
		append([]byte{0xEF, 0xBB, 0xBF}, 0xB9, 0x81),
	}
	for _, raw := range inputs {
		got := Decode(raw)
		if !valid[got.Encoding] {
			t.Errorf("Decode(% x) returned unknown encoding tag %q", raw, got.Encoding)
		}
		if got.Confidence != ConfidenceHigh && got.Confidence != ConfidenceMedium && got.Confidence != ConfidenceLow {
			t.Errorf("Decode(% x) returned unknown confidence %q", raw, got.Confidence)
		}
	}
}

func TestLegacyOrderPrefersStrongerSignal(t *testing.T) {
	first, _ := legacyOrder([]byte{0xB1, 0xB6, 0xBC, 0xB9})
	if first != EncodingISO88592 {
		t.Errorf("first = %q, want %q when ISO indicator bytes dominate", first, EncodingISO88592)
	}

	first, _ = legacyOrder([]byte{0xB9, 0x9C, 0x9F})
	if first != EncodingCP1250 {
		t.Errorf("first = %q, want %q when CP1250 indicator bytes dominate", first, EncodingCP1250)
	}
}
