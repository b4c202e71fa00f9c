package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobwatchd/jobwatch/internal/model"
)

func TestCompany(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "slug suffix",
			link: "https://jobs.example.com/staff-product-manager-remote-canada-at-shakepay",
			want: "Shakepay",
		},
		{
			name: "multi word slug",
			link: "https://jobs.example.com/senior-dev-at-acme-labs",
			want: "Acme Labs",
		},
		{
			name: "png suffix stripped",
			link: "https://cdn.example.com/backend-engineer-at-shakepay.png",
			want: "Shakepay",
		},
		{
			name: "no slug",
			link: "https://jobs.example.com/12345",
			want: "Unknown Company",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Company(tt.link))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		desc  string
		want  model.JobType
	}{
		{"fullstack title", "Fullstack Engineer", "", model.TypeFullstack},
		{"frontend hyphenated", "Front-End Developer", "", model.TypeFrontend},
		{"backend in description", "Engineer", "We need an API developer", model.TypeBackend},
		{"mobile ios", "iOS Engineer", "", model.TypeMobile},
		{"devops sre", "SRE", "", model.TypeDevops},
		{"blockchain solidity", "Engineer", "Writing Solidity contracts", model.TypeBlockchain},
		{"no match", "Chief of Staff", "Run the office", model.TypeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.title, tt.desc))
		})
	}
}

// Overlapping keywords must resolve to the earlier taxonomy entry.
func TestClassifyTieBreakOrder(t *testing.T) {
	got := Classify("Engineer", "blockchain company looking for a data analyst")
	assert.Equal(t, model.TypeBlockchain, got)

	// "fullstack" appears before "backend" in the table.
	got = Classify("Fullstack Backend Engineer", "")
	assert.Equal(t, model.TypeFullstack, got)
}

func TestClassifyDeterministic(t *testing.T) {
	title, desc := "Senior Rust Engineer", "Build web3 infrastructure with Rust and Solidity."
	first := Classify(title, desc)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(title, desc))
	}
}

func TestGUID(t *testing.T) {
	t.Run("feed guid wins", func(t *testing.T) {
		assert.Equal(t, "abc", GUID("abc", "title", "link"))
	})
	t.Run("derived is stable", func(t *testing.T) {
		a := GUID("", "Rust Engineer", "https://example.com/rust-at-acme")
		b := GUID("", "Rust Engineer", "https://example.com/rust-at-acme")
		require.Equal(t, a, b)
		assert.Len(t, a, 32)
	})
	t.Run("different inputs differ", func(t *testing.T) {
		a := GUID("", "Rust Engineer", "https://example.com/a")
		b := GUID("", "Go Engineer", "https://example.com/a")
		assert.NotEqual(t, a, b)
	})
}

func TestCleanDescription(t *testing.T) {
	t.Run("strips images and tags paragraph", func(t *testing.T) {
		raw := `<p>Build things with us.</p><img src="logo.png"/><p>Tags: rust, remote</p><p>Apply now.</p>`
		got := CleanDescription(raw)
		assert.Equal(t, "Build things with us.\nApply now.", got)
	})

	t.Run("plain text passes through", func(t *testing.T) {
		got := CleanDescription("Just a plain description.")
		assert.Equal(t, "Just a plain description.", got)
	})

	t.Run("blank lines removed", func(t *testing.T) {
		raw := "<p>one</p><p>   </p><p>two</p>"
		assert.Equal(t, "one\ntwo", CleanDescription(raw))
	})

	t.Run("truncated to 1000 with ellipsis", func(t *testing.T) {
		raw := "<p>" + strings.Repeat("x", 2000) + "</p>"
		got := CleanDescription(raw)
		require.Len(t, got, 1000)
		assert.True(t, strings.HasSuffix(got, "..."))
	})
}
