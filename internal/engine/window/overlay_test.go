package window

import "testing"

type titleRecorder struct {
	titles []string
}

func (r *titleRecorder) SetTitle(title string) {
	r.titles = append(r.titles, title)
}

func (r *titleRecorder) last() string {
	return r.titles[len(r.titles)-1]
}

func TestOverlay(t *testing.T) {
	rec := &titleRecorder{}
	o := NewOverlay(rec, "Gaze Heatmap")
	if rec.last() != "Gaze Heatmap" {
		t.Errorf("initial title = %q", rec.last())
	}

	o.SetText("H: record")
	if rec.last() != "Gaze Heatmap | H: record" {
		t.Errorf("title = %q", rec.last())
	}

	o.SetVisible(false)
	if rec.last() != "Gaze Heatmap" || o.Visible() {
		t.Errorf("hidden title = %q", rec.last())
	}

	// Text updates while hidden are kept for later
	o.SetText("H: record (2 points)")
	if rec.last() != "Gaze Heatmap" {
		t.Errorf("hidden overlay leaked text: %q", rec.last())
	}

	o.SetVisible(true)
	if rec.last() != "Gaze Heatmap | H: record (2 points)" {
		t.Errorf("restored title = %q", rec.last())
	}

	n := len(rec.titles)
	o.SetVisible(true)
	o.SetText("H: record (2 points)")
	if len(rec.titles) != n {
		t.Error("unchanged state should not rewrite the title")
	}
}
