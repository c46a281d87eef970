package board

import "go-drumkit/drumkit"

// Fanout shows the same pads on several displays. Reads come from the
// first display that has the element.
type Fanout []drumkit.Display

func (f Fanout) Element(id string) (drumkit.Element, bool) {
	var els fanoutElement
	for _, d := range f {
		if d == nil {
			continue
		}
		if el, ok := d.Element(id); ok {
			els = append(els, el)
		}
	}
	if len(els) == 0 {
		return nil, false
	}
	if len(els) == 1 {
		return els[0], true
	}
	return els, true
}

type fanoutElement []drumkit.Element

func (f fanoutElement) Text() string {
	return f[0].Text()
}

func (f fanoutElement) SetText(text string) {
	for _, el := range f {
		el.SetText(text)
	}
}

func (f fanoutElement) AddClass(class string) {
	for _, el := range f {
		el.AddClass(class)
	}
}

func (f fanoutElement) RemoveClass(class string) {
	for _, el := range f {
		el.RemoveClass(class)
	}
}

func (f fanoutElement) HasClass(class string) bool {
	return f[0].HasClass(class)
}
