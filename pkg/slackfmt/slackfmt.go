// Package slackfmt renders Slack mrkdwn, the dialect digest summaries
// are written in, to HTML or plain text. mrkdwn uses *bold*, _italic_,
// ~strike~, `code`, triple-backtick blocks and <url|label> links.
package slackfmt

import (
	"regexp"
	"strings"
)

var (
	codeBlockRe = regexp.MustCompile("(?s)```(.*?)```")
	inlineRe    = regexp.MustCompile("`(.*?)`")
	boldRe      = regexp.MustCompile(`\*(.*?)\*`)
	italicRe    = regexp.MustCompile(`_(.*?)_`)
	strikeRe    = regexp.MustCompile(`~(.*?)~`)
	labeledRe   = regexp.MustCompile(`<(https?://[^|>]+)\|([^>]+)>`)
	plainURLRe  = regexp.MustCompile(`<(https?://[^>]+)>`)
)

// ToHTML converts mrkdwn to HTML. Newlines become <br> so the result can
// be dropped into a block element as-is.
func ToHTML(text string) string {
	if text == "" {
		return text
	}

	out := codeBlockRe.ReplaceAllString(text, "<pre><code>$1</code></pre>")
	out = inlineRe.ReplaceAllString(out, "<code>$1</code>")
	out = boldRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRe.ReplaceAllString(out, "<em>$1</em>")
	out = strikeRe.ReplaceAllString(out, "<del>$1</del>")
	out = labeledRe.ReplaceAllString(out, `<a href="$1">$2</a>`)
	out = plainURLRe.ReplaceAllString(out, `<a href="$1">$1</a>`)
	return strings.ReplaceAll(out, "\n", "<br>")
}

// ToText strips all mrkdwn formatting. Labeled links keep only their
// label; bare links keep the URL.
func ToText(text string) string {
	if text == "" {
		return text
	}

	out := codeBlockRe.ReplaceAllString(text, "$1")
	out = labeledRe.ReplaceAllString(out, "$2")
	out = plainURLRe.ReplaceAllString(out, "$1")
	out = strings.NewReplacer("*", "", "_", "", "~", "", "`", "").Replace(out)
	return out
}
