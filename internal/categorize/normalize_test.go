package categorize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tayloree/foodcat/internal/categorize"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: []string{}},
		{name: "whitespace only", in: "   ", want: []string{}},
		{name: "quantity only", in: "500 g", want: []string{}},
		{name: "single product", in: "Hel kylling", want: []string{"Hel kylling"}},
		{name: "strips count", in: "Skrabeæg, 10 stk", want: []string{"Skrabeæg"}},
		{name: "strips weight and percent range", in: "Hakket oksekød 8-12% 500 g", want: []string{"Hakket oksekød"}},
		{name: "decimal weight", in: "Kartofler 1,5 kg", want: []string{"Kartofler"}},
		{
			name: "hyphen continuation skips conjunction",
			in:   "Kyllingfilet eller -inderfilet",
			want: []string{"Kyllingfilet", "Kyllingfiletinderfilet"},
		},
		{
			name: "splits every alternation marker",
			in:   "Smør & olivenolie + salt og peber",
			want: []string{"Smør", "olivenolie", "salt", "peber"},
		},
		{name: "decodes entities", in: "Laks &amp; ris", want: []string{"Laks", "ris"}},
		{name: "collapses whitespace", in: "  Hel \n kylling ", want: []string{"Hel kylling"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, categorize.Normalize(tc.in))
		})
	}
}

func TestNormalize_LeadingHyphenWithoutRoot(t *testing.T) {
	assert.Equal(t, []string{"-lår"}, categorize.Normalize("-lår"))
}
