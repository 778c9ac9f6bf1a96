package detect

import "testing"

func TestSniff_STDFLittleEndian(t *testing.T) {
	input := []byte{2, 0, 0, 10, 2, 4, 0, 0}
	if got := Sniff(input); got != STDF {
		t.Errorf("expected STDF, got %s", got)
	}
}

func TestSniff_STDFBigEndian(t *testing.T) {
	input := []byte{0, 2, 0, 10, 1, 4}
	if got := Sniff(input); got != STDF {
		t.Errorf("expected STDF, got %s", got)
	}
}

func TestSniff_EventJSON(t *testing.T) {
	input := `{"kind":"ptr","label":"100 VDD","result":1.2}` + "\n" + `{"kind":"prr","x":0,"y":0}` + "\n"
	if got := Sniff([]byte(input)); got != EventJSON {
		t.Errorf("expected EventJSON, got %s", got)
	}
}

func TestSniff_EventJSON_LeadingWhitespaceAndPRRFirst(t *testing.T) {
	input := "\n  \t{\"kind\":\"prr\",\"x\":1,\"y\":2}\n"
	if got := Sniff([]byte(input)); got != EventJSON {
		t.Errorf("expected EventJSON, got %s", got)
	}
}

func TestSniff_Empty(t *testing.T) {
	if got := Sniff([]byte("")); got != Unknown {
		t.Errorf("expected Unknown for empty, got %s", got)
	}
}

func TestSniff_OtherJSON(t *testing.T) {
	input := `{"Time":"2024-01-01T00:00:00Z","Action":"start","Package":"example.com/pkg"}` + "\n"
	if got := Sniff([]byte(input)); got != Unknown {
		t.Errorf("expected Unknown for go test -json, got %s", got)
	}
}

func TestSniff_OtherRecordFirst(t *testing.T) {
	// A MIR-first stream is not a valid STDF file.
	input := []byte{2, 0, 1, 10, 0, 0}
	if got := Sniff(input); got != Unknown {
		t.Errorf("expected Unknown, got %s", got)
	}
}

func TestSniff_PlainText(t *testing.T) {
	if got := Sniff([]byte("x,y,value\n1,2,3\n")); got != Unknown {
		t.Errorf("expected Unknown, got %s", got)
	}
}

func TestFormat_String(t *testing.T) {
	for f, want := range map[Format]string{STDF: "stdf", EventJSON: "eventjson", Unknown: "unknown"} {
		if got := f.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", f, got, want)
		}
	}
}
