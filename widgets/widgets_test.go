package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderDrumPad(t *testing.T) {
	out := RenderDrumPad("Snare ↑", PadStyle{Symbol: '●'}, 12)
	if !strings.Contains(out, "Snare ↑") || !strings.Contains(out, "●") {
		t.Errorf("pad is missing its label or symbol: %q", out)
	}
	if h := lipgloss.Height(out); h != 4 {
		t.Errorf("expected a 4 line pad (border + 2 lines), got %d", h)
	}
}

func TestRenderPadRows(t *testing.T) {
	pad := RenderDrumPad("X", PadStyle{Symbol: '○'}, 4)
	out := RenderPadRows([]string{pad, pad, pad}, 2)
	if h := lipgloss.Height(out); h != 2*lipgloss.Height(pad) {
		t.Errorf("three pads at two per row should take two rows, height=%d", h)
	}
	if RenderPadRows(nil, 0) != "" {
		t.Error("no pads should render nothing")
	}
}

func TestRenderPadGrid(t *testing.T) {
	out := RenderPadGrid(map[[2]int][3]uint8{{0, 0}: {255, 0, 0}})
	if lines := strings.Split(out, "\n"); len(lines) != 9 {
		t.Errorf("expected 9 rows, got %d", len(lines))
	}
	if strings.Count(out, "■") != 80 {
		t.Errorf("expected 80 pads, got %d", strings.Count(out, "■"))
	}
}
