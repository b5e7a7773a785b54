package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestDiffRunesIgnoresCase(t *testing.T) {
	runes := diffRunes([]rune("Paris"), []rune("paRx"))
	if len(runes) != 5 {
		t.Fatalf("expected 5 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("P") || runes[2].s != correctStyle.Render("r") {
		t.Fatalf("expected case-insensitive matches to be correct")
	}
	if runes[3].s != incorrectStyle.Render("i") {
		t.Fatalf("expected incorrect style for mismatched rune")
	}
	if runes[4].s != pendingStyle.Render("s") {
		t.Fatalf("expected pending style for untyped rune")
	}
}

func TestDiffRunesWrongSpaceDot(t *testing.T) {
	runes := diffRunes([]rune("a b"), []rune("axb"))
	if runes[1].s != incorrectStyle.Render("•") {
		t.Fatalf("expected red dot for wrong space")
	}
	if !runes[1].isSpace {
		t.Fatalf("expected wrap point to follow the target space")
	}
}

func TestWrapStyledRunesBreaksAtSpaces(t *testing.T) {
	plain := lipgloss.NewStyle()
	out := wrapStyledRunes(styleText("which planet is closest", plain), 12)
	lines := strings.Split(out, "\n")
	want := []string{"which planet", "is closest"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %q", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestWrapStyledRunesSplitsLongWords(t *testing.T) {
	plain := lipgloss.NewStyle()
	out := wrapStyledRunes(styleText("abcdefgh", plain), 3)
	if out != "abc\ndef\ngh" {
		t.Fatalf("unexpected wrap %q", out)
	}
}

func TestWrapStyledRunesWideRunes(t *testing.T) {
	plain := lipgloss.NewStyle()
	out := wrapStyledRunes(styleText("日本 語", plain), 4)
	if out != "日本\n語" {
		t.Fatalf("unexpected wrap %q", out)
	}
}
