package assistant

import (
	"strings"

	"golang.org/x/net/html"
)

var emphasis = strings.NewReplacer("**", "", "__", "")

// CleanReply reduces model output to plain text: HTML tags are dropped,
// entities decoded and markdown emphasis markers removed.
func CleanReply(s string) string {
	if strings.ContainsAny(s, "<&") {
		s = stripHTML(s)
	}
	s = emphasis.Replace(s)
	return strings.TrimSpace(s)
}

func stripHTML(s string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" || string(name) == "p" {
				sb.WriteByte('\n')
			}
		}
	}
}
