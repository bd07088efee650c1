package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripInvisible(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text untouched", input: "fix flaky retry", want: "fix flaky retry"},
		{name: "zero width space", input: "fix​ bug", want: "fix bug"},
		{name: "bidi override", input: "safe‮txt.exe", want: "safetxt.exe"},
		{name: "unicode tags", input: "hello\U000E0041\U000E0042", want: "hello"},
		{name: "word joiner", input: "a⁠b", want: "ab"},
		{name: "empty", input: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripInvisible(tc.input))
		})
	}
}

func TestText(t *testing.T) {
	t.Run("strips script tags", func(t *testing.T) {
		got := Text(`release notes <script>alert("x")</script>done`)
		assert.NotContains(t, got, "<script>")
		assert.Contains(t, got, "release notes")
	})

	t.Run("keeps markdown-rendered elements", func(t *testing.T) {
		got := Text("<strong>breaking</strong> change in <code>Parse</code>")
		assert.Equal(t, "<strong>breaking</strong> change in <code>Parse</code>", got)
	})

	t.Run("drops event handlers", func(t *testing.T) {
		got := Text(`<img src="https://example.com/x.png" onerror="evil()">`)
		assert.NotContains(t, got, "onerror")
	})

	t.Run("combined pipeline", func(t *testing.T) {
		got := Text("ship​ it <style>body{}</style>now")
		assert.NotContains(t, got, "<style>")
		assert.Contains(t, got, "ship it")
	})
}
