package slackfmt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/infrasync/infrasync-go/pkg/slackfmt"
)

func TestToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "bold", in: "*4 PRs merged*", want: "<strong>4 PRs merged</strong>"},
		{name: "italic", in: "_quiet week_", want: "<em>quiet week</em>"},
		{name: "strike", in: "~dropped~", want: "<del>dropped</del>"},
		{name: "inline code", in: "fix in `main.go`", want: "fix in <code>main.go</code>"},
		{
			name: "code block",
			in:   "```go test ./...```",
			want: "<pre><code>go test ./...</code></pre>",
		},
		{
			name: "labeled link",
			in:   "<https://github.com/acme/api/pull/7|#7>",
			want: `<a href="https://github.com/acme/api/pull/7">#7</a>`,
		},
		{
			name: "bare link",
			in:   "<https://github.com/acme/api>",
			want: `<a href="https://github.com/acme/api">https://github.com/acme/api</a>`,
		},
		{name: "newlines", in: "a\nb", want: "a<br>b"},
		{
			name: "mixed summary",
			in:   "*Weekly digest*\n_3 bugfixes_ in `parser`",
			want: "<strong>Weekly digest</strong><br><em>3 bugfixes</em> in <code>parser</code>",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, slackfmt.ToHTML(tt.in))
		})
	}
}

func TestToText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "strips markers", in: "*bold* _em_ ~del~ `code`", want: "bold em del code"},
		{name: "code block keeps content", in: "```x := 1```", want: "x := 1"},
		{
			name: "labeled link keeps label",
			in:   "merged <https://github.com/acme/api/pull/7|#7> today",
			want: "merged #7 today",
		},
		{
			name: "bare link keeps url",
			in:   "see <https://github.com/acme/api>",
			want: "see https://github.com/acme/api",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, slackfmt.ToText(tt.in))
		})
	}
}
