package fetch

import (
	"net/url"
	"strings"
)

// Site describes where a job board keeps the posting text.
type Site struct {
	Name    string
	hosts   []string
	Content []string
	Noise   []string
}

// genericSite applies to hosts no known board matches.
var genericSite = Site{
	Name: "generic",
	Content: []string{
		".job-description",
		"#job-description",
		".job-details",
		".posting-content",
		"[data-testid='job-description']",
		"main",
		"article",
		"#content",
		".content",
	},
	Noise: []string{".apply-button-container", ".eeo-statement", ".legal-disclosure"},
}

var knownSites = []Site{
	{
		Name:    "greenhouse",
		hosts:   []string{"greenhouse.io"},
		Content: []string{".job__description", "#content", ".job-post-container"},
		Noise:   []string{".application--wrapper", "#application", ".voluntary-self-id", ".eeo-section"},
	},
	{
		Name:    "lever",
		hosts:   []string{"lever.co"},
		Content: []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description"},
		Noise:   []string{".posting-apply", ".apply-section", ".lever-application-form"},
	},
	{
		Name:    "workday",
		hosts:   []string{"myworkdayjobs.com", "workday.com"},
		Content: []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']"},
		Noise:   []string{"[data-automation-id='applyButton']"},
	},
	{
		Name:    "ashby",
		hosts:   []string{"ashbyhq.com"},
		Content: []string{"[class*='descriptionText']", "main"},
	},
}

// SiteFor picks the extraction rules for urlStr by host.
func SiteFor(urlStr string) Site {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return genericSite
	}
	host := strings.ToLower(parsed.Hostname())
	for _, s := range knownSites {
		for _, h := range s.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return s
			}
		}
	}
	return genericSite
}
