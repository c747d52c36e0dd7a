// Package analyze defines the contract between the vision model's free-form
// output and the typed results the rest of the app consumes: the two
// classification outcomes (announcement / test), the validator that turns
// untrusted JSON into one of them, and the analysis engine boundary.
package analyze

// Kind discriminates the two analysis outcomes.
type Kind string

const (
	KindAnnouncement Kind = "announcement"
	KindTest         Kind = "test"
)

// Model-facing discriminator values, fixed by the prompt contract.
const (
	typeAnnouncement = "お知らせ"
	typeTest         = "テスト"
)

// Result is the validated analysis outcome. Exactly one of Announcement and
// Test is set, matching Kind.
type Result struct {
	Kind         Kind          `json:"kind"`
	Announcement *Announcement `json:"announcement,omitempty"`
	Test         *Test         `json:"test,omitempty"`
}

// Announcement is an event-bearing handout. Events holds at least one entry;
// FullText is a best-effort transcription of the whole page and may be empty.
type Announcement struct {
	FullText string  `json:"fullText"`
	Events   []Event `json:"events"`
}

// Event is a single calendar-ready entry. Start is ISO-8601 as emitted by the
// model; the format is not validated here and surfaces downstream.
type Event struct {
	Name  string `json:"eventName"`
	Start string `json:"eventDate"`
	End   string `json:"eventEndDate,omitempty"`
	Memo  string `json:"memo,omitempty"`
}

// Test is a worksheet handout. Problems may be empty.
type Test struct {
	SummaryTitle string    `json:"summaryTitle"`
	Subject      string    `json:"subject"`
	Date         string    `json:"date"` // YYYY-MM-DD or empty
	Problems     []Problem `json:"problems"`
}

// Problem is one enumerated worksheet problem, optionally tied to the figure
// region the model located for it.
type Problem struct {
	Text   string  `json:"text"`
	Region *Region `json:"imageRegion,omitempty"`
}

// Region is a rectangle in fractional image coordinates (0..1), independent
// of pixel resolution.
type Region struct {
	YMin float64 `json:"ymin"`
	XMin float64 `json:"xmin"`
	YMax float64 `json:"ymax"`
	XMax float64 `json:"xmax"`
}

// Clamp forces the region into [0,1] on both axes and reports whether the
// clamped box still has positive area. A degenerate or inverted box is not
// an error, it just means "no region".
func (r Region) Clamp() (Region, bool) {
	c := Region{
		YMin: clamp01(r.YMin),
		XMin: clamp01(r.XMin),
		YMax: clamp01(r.YMax),
		XMax: clamp01(r.XMax),
	}
	if c.YMax <= c.YMin || c.XMax <= c.XMin {
		return Region{}, false
	}
	return c, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
