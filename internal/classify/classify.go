// Package classify derives a job's category, company, and cleaned
// description from raw feed fields. Everything here is a pure function of
// its inputs so re-classifying the same entry always yields the same Job.
package classify

import (
	"crypto/md5"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobwatchd/jobwatch/internal/model"
)

const maxDescriptionLen = 1000

// taxonomy maps categories to their trigger keywords. Order matters: the
// first category with a matching keyword wins, so overlapping keywords
// resolve deterministically.
var taxonomy = []struct {
	jobType  model.JobType
	keywords []string
}{
	{model.TypeFullstack, []string{"fullstack", "full stack", "full-stack"}},
	{model.TypeFrontend, []string{"frontend", "front end", "front-end", "ui developer", "react developer"}},
	{model.TypeBackend, []string{"backend", "back end", "back-end", "api developer"}},
	{model.TypeMobile, []string{"mobile", "ios", "android", "flutter", "react native"}},
	{model.TypeDevops, []string{"devops", "dev ops", "sre", "site reliability", "infrastructure"}},
	{model.TypeBlockchain, []string{"blockchain", "smart contract", "solidity", "web3", "crypto", "nft"}},
	{model.TypeAI, []string{"ai", "artificial intelligence", "machine learning", "ml engineer", "data scientist"}},
	{model.TypeData, []string{"data engineer", "data analyst", "database", "sql"}},
	{model.TypeDesign, []string{"designer", "ui/ux", "ui designer", "ux designer"}},
	{model.TypeProduct, []string{"product manager", "product owner"}},
	{model.TypeQA, []string{"qa", "quality assurance", "test", "tester", "testing"}},
}

// companyPattern matches the "-at-<slug>" suffix some job boards append to
// apply links, e.g. staff-product-manager-remote-canada-at-shakepay.
var companyPattern = regexp.MustCompile(`-at-([^.]+)(?:\.png)?$`)

// GUID returns the stable identifier for an entry, deriving one from the
// title and link when the feed does not supply its own.
func GUID(guid, title, link string) string {
	if guid != "" {
		return guid
	}
	return fmt.Sprintf("%x", md5.Sum([]byte(title+link)))
}

// Company extracts the company name from the job link. Links without the
// "-at-<slug>" suffix yield "Unknown Company".
func Company(link string) string {
	m := companyPattern.FindStringSubmatch(link)
	if m == nil {
		return "Unknown Company"
	}
	return titleCase(strings.ReplaceAll(m[1], "-", " "))
}

// Classify resolves the job category by scanning the lowercased title and
// cleaned description against the taxonomy in declared order.
func Classify(title, cleanDescription string) model.JobType {
	content := strings.ToLower(title) + " " + strings.ToLower(cleanDescription)
	for _, entry := range taxonomy {
		for _, kw := range entry.keywords {
			if strings.Contains(content, kw) {
				return entry.jobType
			}
		}
	}
	return model.TypeOther
}

// CleanDescription strips HTML from a raw description: image tags and any
// paragraph containing a literal "Tags:" section are dropped, remaining
// text is joined line-by-line with blank lines removed, and the result is
// truncated to 1000 characters with an ellipsis.
func CleanDescription(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return truncate(normalizeLines(raw))
	}

	doc.Find("img").Remove()
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if strings.Contains(p.Text(), "Tags:") {
			p.Remove()
		}
	})

	var parts []string
	doc.Find("p, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})

	text := strings.Join(parts, "\n")
	if len(parts) == 0 {
		// Plain-text descriptions have no block elements to walk.
		text = doc.Text()
	}
	return truncate(normalizeLines(text))
}

// normalizeLines trims every line and drops the empty ones.
func normalizeLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxDescriptionLen {
		return s
	}
	return string(runes[:maxDescriptionLen-3]) + "..."
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
