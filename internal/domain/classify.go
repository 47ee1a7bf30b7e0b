package domain

import "strings"

var (
	videoDomains = []string{"youtube.com", "youtu.be", "vimeo.com"}
	videoWords   = []string{"video", "watch"}

	socialDomains = []string{"facebook.com", "twitter.com", "instagram.com", "tiktok.com", "x.com"}

	interviewPhrases = []string{"interview", "speaks out", "testimony", "exclusive"}
	pressPhrases     = []string{"press release", "statement"}
)

// Classify derives the category of a coverage item from its headline and URL.
// Rules are evaluated in fixed order and the first match wins, so the result is
// a pure function of its inputs.
func Classify(headline, rawURL string) Category {
	title := strings.ToLower(headline)
	link := strings.ToLower(rawURL)

	switch {
	case containsAny(link, videoDomains) || containsAny(title, videoWords):
		return CategoryVideo
	case containsAny(link, socialDomains):
		return CategorySocial
	case containsAny(title, interviewPhrases):
		return CategoryInterview
	case containsAny(title, pressPhrases):
		return CategoryPress
	default:
		return CategoryNews
	}
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
