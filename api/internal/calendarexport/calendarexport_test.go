package calendarexport

import (
	"strings"
	"testing"
	"time"

	"print-bot/api/internal/analyze"
)

func TestBuildEventBasic(t *testing.T) {
	ev := analyze.Event{
		Name:  "授業参観",
		Start: "2025-03-15T10:00:00",
		End:   "2025-03-15T11:00:00",
		Memo:  "2年1組",
	}
	out, err := BuildEvent(ev, "", nil)
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	if out.Summary != "授業参観" {
		t.Errorf("summary: %q", out.Summary)
	}
	if out.Description != "2年1組" {
		t.Errorf("description: %q", out.Description)
	}
	start, _ := time.Parse(time.RFC3339, out.Start.DateTime)
	end, _ := time.Parse(time.RFC3339, out.End.DateTime)
	if end.Sub(start) != time.Hour {
		t.Errorf("window: %v .. %v", start, end)
	}
	if out.Reminders != nil {
		t.Error("no reminders requested, calendar default must apply")
	}
}

func TestBuildEventDefaultEnd(t *testing.T) {
	out, err := BuildEvent(analyze.Event{Name: "保護者会", Start: "2025-03-15T13:00:00"}, "", nil)
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	start, _ := time.Parse(time.RFC3339, out.Start.DateTime)
	end, _ := time.Parse(time.RFC3339, out.End.DateTime)
	if end.Sub(start) != time.Hour {
		t.Errorf("missing end must default to start+1h, got %v", end.Sub(start))
	}
}

func TestBuildEventTitleFallback(t *testing.T) {
	out, err := BuildEvent(analyze.Event{Name: "　", Start: "2025-03-15"}, "", nil)
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	if out.Summary == "" || out.Summary == "　" {
		t.Errorf("empty title must fall back to placeholder, got %q", out.Summary)
	}
}

func TestBuildEventFullTextHeader(t *testing.T) {
	out, err := BuildEvent(
		analyze.Event{Name: "運動会", Start: "2025-05-10T09:00:00", Memo: "雨天延期"},
		"〇〇小学校 運動会のお知らせ",
		nil,
	)
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	if !strings.HasPrefix(out.Description, "雨天延期") {
		t.Errorf("memo must lead the notes: %q", out.Description)
	}
	if !strings.Contains(out.Description, "【プリント原文】") ||
		!strings.Contains(out.Description, "運動会のお知らせ") {
		t.Errorf("full text not appended under header: %q", out.Description)
	}
}

func TestBuildEventReminders(t *testing.T) {
	out, err := BuildEvent(
		analyze.Event{Name: "遠足", Start: "2025-04-01T08:30:00"},
		"",
		[]int64{0, -1440, -10080}, // third offset must be dropped
	)
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	r := out.Reminders
	if r == nil || r.UseDefault {
		t.Fatalf("override reminders expected: %+v", r)
	}
	if len(r.Overrides) != 2 {
		t.Fatalf("got %d overrides, want 2", len(r.Overrides))
	}
	if r.Overrides[0].Minutes != 0 || r.Overrides[1].Minutes != 1440 {
		t.Errorf("offsets mapped wrong: %+v, %+v", r.Overrides[0], r.Overrides[1])
	}
}

func TestBuildEventBadStart(t *testing.T) {
	if _, err := BuildEvent(analyze.Event{Name: "x", Start: "来週の金曜"}, "", nil); err == nil {
		t.Fatal("unparsable start must error")
	}
}
