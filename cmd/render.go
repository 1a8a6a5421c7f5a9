package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/hubscout/pkg/github"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Shared lipgloss styles for CLI output.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	loginStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 1, 2)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))
)

// counts formats large numbers with locale separators (12,345).
var counts = message.NewPrinter(language.English)

func renderProfile(profile *github.UserProfile) string {
	var b strings.Builder

	header := loginStyle.Render(profile.Login)
	if profile.Name != "" {
		header += " " + metaStyle.Render("("+profile.Name+")")
	}
	b.WriteString(header + "\n")

	if profile.DetailsUnavailable {
		b.WriteString(warnStyle.Render("details unavailable") + "\n")
	} else {
		if profile.Bio != "" {
			b.WriteString(profile.Bio + "\n")
		}
		var facts []string
		if profile.Company != "" {
			facts = append(facts, profile.Company)
		}
		if profile.Location != "" {
			facts = append(facts, profile.Location)
		}
		if len(facts) > 0 {
			b.WriteString(metaStyle.Render(strings.Join(facts, " · ")) + "\n")
		}
		b.WriteString(counts.Sprintf("%d repos, %d followers, %d following\n",
			profile.PublicRepos, profile.Followers, profile.Following))
		if profile.Hireable {
			b.WriteString(metaStyle.Render("open to work") + "\n")
		}
		if !profile.CreatedAt.IsZero() {
			b.WriteString(metaStyle.Render("joined "+profile.CreatedAt.Format("January 2006")) + "\n")
		}
	}

	b.WriteString(urlStyle.Render(profile.HTMLURL))
	return cardStyle.Render(b.String())
}

func renderSearchPage(page *github.SearchResultPage) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(counts.Sprintf("%d users found", page.TotalCount)) + "\n")

	for _, profile := range page.Items {
		b.WriteString(renderProfile(&profile) + "\n")
	}

	footer := counts.Sprintf("page %d (%d per page)", page.Page, page.PerPage)
	if page.HasMore {
		footer += ", more pages available"
	}
	b.WriteString(metaStyle.Render(footer) + "\n")
	b.WriteString(metaStyle.Render(renderRateLimit(page.RateLimit)))

	return b.String()
}

func renderRateLimit(rateLimit github.RateLimit) string {
	line := fmt.Sprintf("rate limit: %d/%d remaining", rateLimit.Remaining, rateLimit.Limit)
	if !rateLimit.Reset.IsZero() {
		line += ", resets " + rateLimit.Reset.Local().Format("15:04:05")
	}
	return line
}
