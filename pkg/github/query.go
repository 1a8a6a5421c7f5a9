package github

import (
	"fmt"
	"regexp"
	"strings"
)

// GitHub handle grammar: alphanumeric segments separated by single
// hyphens, at most 39 characters.
var handleRe = regexp.MustCompile(`^[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*$`)

var languageSanitizer = regexp.MustCompile(`[^a-zA-Z0-9+#-]`)

// BuildQuery renders params into the provider's search-qualifier syntax.
// It is a pure function: identical params always produce an identical
// string, which keeps cache keys stable. Malformed individual fields are
// dropped rather than failing the whole query; an empty result means no
// usable filter was supplied and the search must be rejected by the
// caller.
func BuildQuery(params SearchParams) string {
	var terms []string

	username := strings.TrimSpace(params.Username)
	if username != "" {
		if validHandle(username) {
			terms = append(terms, "user:"+username)
		} else {
			terms = append(terms, username+" in:login")
		}
	}

	location := strings.TrimSpace(params.Location)
	if location != "" {
		if strings.ContainsAny(location, " \t") {
			terms = append(terms, fmt.Sprintf("location:%q", location))
		} else {
			terms = append(terms, "location:"+location)
		}
	}

	if params.MinRepos > 0 {
		terms = append(terms, fmt.Sprintf("repos:>=%d", params.MinRepos))
	}
	if params.MaxRepos > 0 {
		terms = append(terms, fmt.Sprintf("repos:<=%d", params.MaxRepos))
	}
	if params.MinFollowers > 0 {
		terms = append(terms, fmt.Sprintf("followers:>=%d", params.MinFollowers))
	}
	if params.MaxFollowers > 0 {
		terms = append(terms, fmt.Sprintf("followers:<=%d", params.MaxFollowers))
	}

	if language := sanitizeLanguage(params.Language); language != "" {
		terms = append(terms, "language:"+language)
	}

	if created := strings.TrimSpace(params.Created); created != "" {
		terms = append(terms, "created:"+created)
	}

	accountType := strings.TrimSpace(params.AccountType)
	switch {
	case accountType != "":
		terms = append(terms, "type:"+accountType)
	case username == "" && len(terms) > 0:
		// Substantive filters without an identity fragment: exclude
		// organizations unless the caller asked for them.
		terms = append(terms, "type:user")
	}

	return strings.Join(terms, " ")
}

func validHandle(s string) bool {
	return len(s) <= 39 && handleRe.MatchString(s)
}

func sanitizeLanguage(s string) string {
	return languageSanitizer.ReplaceAllString(strings.TrimSpace(s), "")
}
