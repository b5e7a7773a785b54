package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatch(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		accepted []string
		want     bool
	}{
		{"exact ignores case", "Ottawa", []string{"ottawa"}, true},
		{"input contains answer", "ottawa city", []string{"ottawa"}, true},
		{"short input is not partial", "ot", []string{"ottawa"}, false},
		{"empty input", "", []string{"it"}, false},
		{"empty input long answer", "", []string{"ottawa"}, false},
		{"trims whitespace", "  NILE  ", []string{"nile", "nile river"}, true},
		{"partial of longer answer", "vinci", []string{"da vinci", "leonardo da vinci"}, true},
		{"second accepted answer", "mount everest", []string{"k2", "everest"}, true},
		{"short answer exact only", "it", []string{"it"}, true},
		{"input contains short answer", "italy", []string{"it"}, true},
		{"phrase contains short answer", "it was", []string{"it"}, true},
		{"symbol in phrase", "au symbol", []string{"au"}, true},
		{"short input not contained", "i", []string{"it"}, false},
		{"wrong answer", "toronto", []string{"ottawa"}, false},
		{"no accepted answers", "ottawa", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsMatch(tc.input, tc.accepted))
		})
	}
}

func TestIsMatchOrderIndependent(t *testing.T) {
	accepted := []string{"leonardo da vinci", "da vinci"}
	reversed := []string{"da vinci", "leonardo da vinci"}
	for _, input := range []string{"leonardo", "da vinci", "vinci", "leo", "monet"} {
		assert.Equal(t, IsMatch(input, accepted), IsMatch(input, reversed), input)
	}
}
