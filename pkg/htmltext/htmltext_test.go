package htmltext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/notifyhub/pkg/htmltext"
)

func TestFlatten(t *testing.T) {
	t.Parallel()

	t.Run("plain text passes through", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "server is down", htmltext.Flatten("server is down"))
	})

	t.Run("inline markup dropped", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "server is down", htmltext.Flatten("server <b>is</b> <i>down</i>"))
	})

	t.Run("block elements become newlines", func(t *testing.T) {
		t.Parallel()
		got := htmltext.Flatten("<h1>Alert</h1><p>disk full</p><p>act now</p>")
		assert.Equal(t, "Alert\ndisk full\nact now", got)
	})

	t.Run("script and style content removed", func(t *testing.T) {
		t.Parallel()
		got := htmltext.Flatten("<style>p{color:red}</style><p>hello</p><script>alert(1)</script>")
		assert.Equal(t, "hello", got)
	})

	t.Run("entities decoded", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "a < b & c", htmltext.Flatten("a &lt; b &amp; c"))
	})

	t.Run("whitespace normalized", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "one two", htmltext.Flatten("  one \n\n  two  "))
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("short content untouched", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "hello", htmltext.Summarize("<p>hello</p>", 100))
	})

	t.Run("long content truncated with ellipsis", func(t *testing.T) {
		t.Parallel()
		got := htmltext.Summarize("<p>abcdefghij</p>", 5)
		assert.Equal(t, "abcde…", got)
	})

	t.Run("non-positive limit returns everything", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "abcdefghij", htmltext.Summarize("abcdefghij", 0))
	})
}
