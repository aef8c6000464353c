package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEmbed(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare url", "https://example.com/x", "https://example.com/x", true},
		{"bare url padded", "  https://example.com/x\n", "https://example.com/x", true},
		{"single quoted src", "<iframe src='https://example.com/y'></iframe>", "https://example.com/y", true},
		{"double quoted src", `<iframe width="560" src="https://www.youtube.com/embed/abc" allowfullscreen></iframe>`, "https://www.youtube.com/embed/abc", true},
		{"upper-case tag", `<IFRAME SRC="https://example.com/z"></IFRAME>`, "https://example.com/z", true},
		{"first iframe wins", `<iframe src="https://a.test/1"></iframe><iframe src="https://a.test/2"></iframe>`, "https://a.test/1", true},
		{"iframe without src", `<iframe width="560"></iframe>`, "", false},
		{"empty", "", "", false},
		{"whitespace", " \t\n ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseEmbed(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
