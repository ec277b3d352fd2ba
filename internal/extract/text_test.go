package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aidPage = `<!doctype html>
<html>
<head>
	<title>  Financial   Aid | Polytechnic </title>
	<style>body { color: red; }</style>
	<script>var tracking = "secret";</script>
</head>
<body>
	<nav><a href="/">Home</a> <a href="/about">About</a></nav>
	<h1>Financial Aid</h1>
	<p>The   Tuition Fee Loan covers up to <b>90%</b> of fees.</p>
	<ul>
		<li>Bursaries</li>
		<li>Emergency grants</li>
	</ul>
	<noscript>Enable JavaScript</noscript>
	<footer>Copyright 2023</footer>
</body>
</html>`

func TestParse_VisibleText(t *testing.T) {
	page, err := ParseString(aidPage)
	require.NoError(t, err)

	assert.Equal(t, "Financial Aid | Polytechnic", page.Title)

	text := page.Text
	assert.Contains(t, text, "Financial Aid")
	assert.Contains(t, text, "The Tuition Fee Loan covers up to 90% of fees.")
	assert.Contains(t, text, "Bursaries")
	assert.Contains(t, text, "Emergency grants")

	for _, hidden := range []string{"tracking", "color: red", "Home", "About", "Copyright", "Enable JavaScript", "Polytechnic"} {
		assert.NotContains(t, text, hidden)
	}
}

func TestVisibleText_BlockStructure(t *testing.T) {
	page, err := ParseString(aidPage)
	require.NoError(t, err)

	lines := strings.Split(page.Text, "\n")
	assert.Equal(t, "Financial Aid", lines[0])
	assert.Contains(t, page.Text, "Bursaries\nEmergency grants")
	assert.NotContains(t, page.Text, "\n\n\n")
	for _, line := range lines {
		assert.Equal(t, strings.TrimSpace(line), line)
	}
}

func TestParse_NoTitle(t *testing.T) {
	page, err := ParseString("<p>just text</p>")
	require.NoError(t, err)
	assert.Empty(t, page.Title)
	assert.Equal(t, "just text", page.Text)
}

func TestParse_Empty(t *testing.T) {
	page, err := ParseString("")
	require.NoError(t, err)
	assert.Empty(t, page.Text)
}
