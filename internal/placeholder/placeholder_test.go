package placeholder

import (
	"testing"

	"i18n-extract/internal/extract"

	"github.com/stretchr/testify/assert"
)

func TestFind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{name: "none", text: "Save changes", expected: nil},
		{name: "printf", text: "%d of %s files", expected: []string{"%d", "%s"}},
		{name: "width", text: "%2d%%", expected: []string{"%2d"}},
		{name: "template", text: "Hello ${name}", expected: []string{"${name}"}},
		{name: "braces", text: "{0} and {count}", expected: []string{"{0}", "{count}"}},
		{name: "named printf", text: "%(user)s joined", expected: []string{"%(user)s"}},
		{name: "escaped percent only", text: "100%% done", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Find(tt.text))
		})
	}
}

func msg(text string, line, arg int) extract.Message {
	return extract.Message{Text: text, File: "app.js", Line: line, Pickup: "ngettext", Arg: arg}
}

func TestCheck_SingularMayOmitPlaceholder(t *testing.T) {
	t.Parallel()

	msgs := []extract.Message{msg("one apple", 1, 0), msg("%d apples", 1, 1)}
	assert.Empty(t, Check(msgs))
}

func TestCheck_ReportsMissingInPlural(t *testing.T) {
	t.Parallel()

	msgs := []extract.Message{msg("%s has %d apple", 3, 0), msg("%d apples", 3, 1)}

	assert.Equal(t, []Mismatch{
		{File: "app.js", Line: 3, Pickup: "ngettext", Arg: 0, Missing: []string{"%s"}},
	}, Check(msgs))
}

func TestCheck_SeparatesCallsOnSameLine(t *testing.T) {
	t.Parallel()

	// two calls on one line: the second restarts at argument 0
	msgs := []extract.Message{
		msg("{n} item", 1, 0), msg("{n} items", 1, 1),
		msg("%d file", 1, 0), msg("%d files", 1, 1),
	}
	assert.Empty(t, Check(msgs))
}

func TestCheck_SkipsUnresolved(t *testing.T) {
	t.Parallel()

	dynamic := msg("", 2, 1)
	dynamic.Unresolved = true

	assert.Empty(t, Check([]extract.Message{msg("%d apple", 2, 0), dynamic}))
	assert.Empty(t, Check(nil))
}
