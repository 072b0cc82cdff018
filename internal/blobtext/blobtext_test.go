package blobtext

import (
	"testing"

	"howett.net/plist"
)

func marshalArchive(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := plist.Marshal(v, plist.BinaryFormat)
	if err != nil {
		t.Fatalf("marshal plist fixture: %v", err)
	}
	return data
}

func TestFromKeyedArchive(t *testing.T) {
	payload := marshalArchive(t, map[string]interface{}{
		"objects": []interface{}{
			"$null",
			"The deadline",
			map[string]interface{}{
				"string": "is Friday",
				"count":  2,
			},
			"The deadline", // duplicate, dropped
			"$class",
		},
	})

	got, ok := FromKeyedArchive(payload)
	if !ok {
		t.Fatal("FromKeyedArchive failed on valid archive")
	}
	want := "The deadline is Friday"
	if got != want {
		t.Errorf("recovered %q, want %q", got, want)
	}
}

func TestFromKeyedArchiveRejectsNonPlist(t *testing.T) {
	if _, ok := FromKeyedArchive([]byte("\x04\x0bstreamtyped garbage")); ok {
		t.Error("non-plist payload should fail the structured stage")
	}
	if _, ok := FromKeyedArchive(nil); ok {
		t.Error("empty payload should fail the structured stage")
	}
}

func TestFromKeyedArchiveOnlyBookkeeping(t *testing.T) {
	payload := marshalArchive(t, map[string]interface{}{
		"objects": []interface{}{"$null", "$class", "$0"},
	})
	if text, ok := FromKeyedArchive(payload); ok {
		t.Errorf("archive with only bookkeeping leaves recovered %q", text)
	}
}

// typedstreamFixture mimics the byte layout of an archived attributed body:
// framework class names and length bytes interleaved with the actual text.
var typedstreamFixture = []byte("\x04\x0bstreamtyped\x81\xe8\x03\x84\x01@\x84\x84\x84" +
	"\x12NSMutableAttributedString\x00\x84\x84\x12NSAttributedString\x00\x84\x84" +
	"\x08NSObject\x00\x85\x92\x84\x84\x84\x15NSMutableString\x01\x94\x84\x01+" +
	"\x0fHey how are you\x86\x84\x02iI\x01\x0f\x92\x84\x84\x84\x0cNSDictionary" +
	"\x00\x94\x84\x01i\x01\x92\x84\x84\x84\x1d__kIMMessagePartAttributeName\x86" +
	"\x92\x84\x84\x84\x08NSNumber\x00\x84\x84\x07NSValue\x00\x94\x84\x01*\x86\x86")

func TestFromRawScan(t *testing.T) {
	got, ok := FromRawScan(typedstreamFixture)
	if !ok {
		t.Fatal("FromRawScan found nothing in typedstream fixture")
	}
	want := "Hey how are you"
	if got != want {
		t.Errorf("recovered %q, want %q", got, want)
	}
}

func TestFromRawScanNothingPrintable(t *testing.T) {
	if text, ok := FromRawScan([]byte{0x00, 0x01, 0x02, 0x86, 0x84}); ok {
		t.Errorf("recovered %q from binary noise", text)
	}
}

func TestFromRawScanOnlyNoiseTokens(t *testing.T) {
	payload := []byte("\x00NSString\x00NSDictionary\x00NSObject\x00")
	if text, ok := FromRawScan(payload); ok {
		t.Errorf("recovered %q from pure serializer vocabulary", text)
	}
}

func TestRecoverFallsThroughStages(t *testing.T) {
	// A plist payload resolves in stage one.
	archived := marshalArchive(t, map[string]interface{}{
		"objects": []interface{}{"see you at 8"},
	})
	if got := Recover(archived); got != "see you at 8" {
		t.Errorf("structured recovery = %q, want %q", got, "see you at 8")
	}

	// A typedstream payload falls through to the raw scan.
	if got := Recover(typedstreamFixture); got != "Hey how are you" {
		t.Errorf("fallback recovery = %q, want %q", got, "Hey how are you")
	}

	// Hopeless input yields empty, never an error.
	if got := Recover([]byte{0x00, 0x01}); got != "" {
		t.Errorf("Recover(noise) = %q, want empty", got)
	}
	if got := Recover(nil); got != "" {
		t.Errorf("Recover(nil) = %q, want empty", got)
	}
}

func TestPrintableRuns(t *testing.T) {
	runs := printableRuns([]byte("\x01abc\x00de\x02fghi"))
	if len(runs) != 2 || runs[0] != "abc" || runs[1] != "fghi" {
		t.Errorf("printableRuns = %v, want [abc fghi]", runs)
	}
}
