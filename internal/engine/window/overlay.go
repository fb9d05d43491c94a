package window

// TitleSetter is the part of Window the overlay writes to.
type TitleSetter interface {
	SetTitle(title string)
}

// Overlay shows status text after the base title. Hiding it leaves the
// base title alone.
type Overlay struct {
	target  TitleSetter
	base    string
	text    string
	visible bool
}

// NewOverlay creates a visible, empty overlay.
func NewOverlay(target TitleSetter, base string) *Overlay {
	o := &Overlay{target: target, base: base, visible: true}
	o.refresh()
	return o
}

// SetText replaces the status text.
func (o *Overlay) SetText(text string) {
	if text == o.text {
		return
	}
	o.text = text
	o.refresh()
}

// SetVisible shows or hides the status text.
func (o *Overlay) SetVisible(visible bool) {
	if visible == o.visible {
		return
	}
	o.visible = visible
	o.refresh()
}

// Visible reports whether the status text is shown.
func (o *Overlay) Visible() bool {
	return o.visible
}

// Title returns the title currently displayed.
func (o *Overlay) Title() string {
	if !o.visible || o.text == "" {
		return o.base
	}
	return o.base + " | " + o.text
}

func (o *Overlay) refresh() {
	o.target.SetTitle(o.Title())
}
