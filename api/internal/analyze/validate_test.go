package analyze

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("test payload does not parse: %v", err)
	}
	return v
}

func TestValidateAnnouncement(t *testing.T) {
	payload := `{
		"type": "お知らせ",
		"fullText": "保護者会のお知らせ\n日時 3月15日",
		"events": [
			{"eventName": "授業参観", "eventDate": "2025-03-15T10:00:00", "eventEndDate": "2025-03-15T11:00:00", "memo": "2年1組"},
			{"eventName": " 保護者会 ", "eventDate": " 2025-03-15T13:00:00 "}
		]
	}`
	res, err := Validate(decode(t, payload))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Kind != KindAnnouncement || res.Announcement == nil || res.Test != nil {
		t.Fatalf("wrong variant: %+v", res)
	}
	a := res.Announcement
	if len(a.Events) != 2 {
		t.Fatalf("events: got %d, want 2", len(a.Events))
	}
	if a.Events[0].Name != "授業参観" || a.Events[1].Name != "保護者会" {
		t.Errorf("event order or trimming wrong: %+v", a.Events)
	}
	if a.Events[1].Start != "2025-03-15T13:00:00" {
		t.Errorf("start not trimmed: %q", a.Events[1].Start)
	}
	if a.Events[0].End == "" || a.Events[0].Memo != "2年1組" {
		t.Errorf("optional fields dropped: %+v", a.Events[0])
	}
	if a.FullText == "" {
		t.Error("fullText lost")
	}
}

func TestValidateAnnouncementZeroEvents(t *testing.T) {
	for _, payload := range []string{
		`{"type":"お知らせ","fullText":"x","events":[]}`,
		`{"type":"お知らせ","fullText":"x"}`,
		`{"type":"お知らせ","fullText":"x","events":"none"}`,
	} {
		_, err := Validate(decode(t, payload))
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("payload %s: got %v, want FormatError", payload, err)
		}
	}
}

func TestValidateTestZeroProblemsAllowed(t *testing.T) {
	res, err := Validate(decode(t, `{"type":"テスト","summaryTitle":" 計算テスト ","subject":"算数","date":"2025-03-15","problems":[]}`))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Kind != KindTest || res.Test == nil {
		t.Fatalf("wrong variant: %+v", res)
	}
	if len(res.Test.Problems) != 0 {
		t.Errorf("problems: got %d, want 0", len(res.Test.Problems))
	}
	if res.Test.SummaryTitle != "計算テスト" {
		t.Errorf("summaryTitle not trimmed: %q", res.Test.SummaryTitle)
	}
}

func TestValidateTestDefaultsEmptyStrings(t *testing.T) {
	res, err := Validate(decode(t, `{"type":"テスト","problems":[{"text":"1. 3+5"}]}`))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	tt := res.Test
	if tt.SummaryTitle != "" || tt.Subject != "" || tt.Date != "" {
		t.Errorf("missing fields must default to empty: %+v", tt)
	}
}

func TestValidateEventMissingFieldsFailsWhole(t *testing.T) {
	payloads := []string{
		`{"type":"お知らせ","events":[{"eventName":"A","eventDate":"2025-01-01T09:00:00"},{"eventDate":"2025-01-02T09:00:00"}]}`,
		`{"type":"お知らせ","events":[{"eventName":"  ","eventDate":"2025-01-01T09:00:00"}]}`,
		`{"type":"お知らせ","events":[{"eventName":"A","eventDate":"  "}]}`,
	}
	for _, p := range payloads {
		res, err := Validate(decode(t, p))
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("payload %s: got %v, want FormatError", p, err)
		}
		if res.Announcement != nil {
			t.Errorf("payload %s: partial events list returned", p)
		}
	}
}

func TestValidateStringifiesPrimitives(t *testing.T) {
	res, err := Validate(decode(t, `{"type":"お知らせ","events":[{"eventName":12345,"eventDate":"2025-03-15T10:00:00","memo":true}]}`))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	ev := res.Announcement.Events[0]
	if ev.Name != "12345" {
		t.Errorf("numeric eventName: got %q", ev.Name)
	}
	if ev.Memo != "true" {
		t.Errorf("bool memo: got %q", ev.Memo)
	}
}

func TestValidateNonObjectProblemFails(t *testing.T) {
	// the model sometimes emits problems as bare strings; the whole result fails
	_, err := Validate(decode(t, `{"type":"テスト","problems":["placeholder"],"summaryTitle":"T","subject":"Math","date":"2025-03-15"}`))
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("got %v, want FormatError", err)
	}
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		name   string
		in     Region
		want   Region
		wantOK bool
	}{
		{"in range unchanged", Region{0.1, 0.05, 0.4, 0.95}, Region{0.1, 0.05, 0.4, 0.95}, true},
		{"zero height dropped", Region{0.5, 0, 0.5, 1}, Region{}, false},
		{"inverted dropped", Region{0.6, 0.2, 0.3, 0.8}, Region{}, false},
		{"clamped but kept", Region{-0.2, 0, 0.3, 1}, Region{0, 0, 0.3, 1}, true},
		{"fully out of range", Region{1.5, 1.5, 2, 2}, Region{}, false},
	}
	for _, tc := range tests {
		got, ok := tc.in.Clamp()
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("%s: got %+v ok=%v, want %+v ok=%v", tc.name, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestValidateRegionDegradation(t *testing.T) {
	payload := `{"type":"テスト","problems":[
		{"text":"1.", "imageRegion":{"ymin":0.5,"xmin":0,"ymax":0.5,"xmax":1}},
		{"text":"2.", "imageRegion":{"ymin":"top","xmin":0,"ymax":0.5,"xmax":1}},
		{"text":"3.", "imageRegion":{"ymin":0.1,"xmin":0.05}},
		{"text":"4.", "imageRegion":{"ymin":-0.2,"xmin":0,"ymax":0.3,"xmax":1}}
	]}`
	res, err := Validate(decode(t, payload))
	if err != nil {
		t.Fatalf("malformed regions must not fail the problem: %v", err)
	}
	ps := res.Test.Problems
	for i := 0; i < 3; i++ {
		if ps[i].Region != nil {
			t.Errorf("problems[%d]: region should have been dropped, got %+v", i, ps[i].Region)
		}
	}
	if ps[3].Region == nil {
		t.Fatal("problems[3]: clamped region dropped")
	}
	if want := (Region{0, 0, 0.3, 1}); *ps[3].Region != want {
		t.Errorf("problems[3]: got %+v, want %+v", *ps[3].Region, want)
	}
}

func TestValidateUnknownType(t *testing.T) {
	for _, p := range []string{`{"type":"recipe"}`, `{}`, `{"type":42}`} {
		_, err := Validate(decode(t, p))
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("payload %s: got %v, want FormatError", p, err)
		}
	}
	if _, err := Validate("not an object"); err == nil {
		t.Error("non-object top level accepted")
	}
}

func TestValidateIdempotent(t *testing.T) {
	payload := decode(t, `{"type":"お知らせ","fullText":"t","events":[{"eventName":"A","eventDate":"2025-01-01T09:00:00"}]}`)
	a, err1 := Validate(payload)
	b, err2 := Validate(payload)
	if err1 != nil || err2 != nil {
		t.Fatalf("Validate: %v / %v", err1, err2)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("not idempotent: %+v vs %+v", a, b)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct{ in, want string }{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"prefix text ```json\n{\"a\":1}\n``` suffix", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tc := range tests {
		if got := ExtractJSON(tc.in); got != tc.want {
			t.Errorf("ExtractJSON(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeTextFencedAnnouncement(t *testing.T) {
	text := "```json\n{\"type\":\"お知らせ\",\"events\":[{\"eventName\":\"Meeting\",\"eventDate\":\"2025-03-15T10:00:00\"}]}\n```"
	res, err := DecodeText(text)
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}
	if res.Kind != KindAnnouncement || len(res.Announcement.Events) != 1 {
		t.Fatalf("wrong result: %+v", res)
	}
	if res.Announcement.Events[0].Name != "Meeting" {
		t.Errorf("event name: got %q", res.Announcement.Events[0].Name)
	}
}

func TestDecodeTextBadJSON(t *testing.T) {
	_, err := DecodeText("sorry, I could not read the image")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("got %v, want FormatError", err)
	}
}
