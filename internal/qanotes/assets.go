package qanotes

import (
	"fmt"
	"strings"
)

// toggleFamily describes one family of collapsible regions: the id prefix of
// its link pair, the id prefix of its body, the suffix of its JS show/hide
// functions, the link labels, and an extra class for both link spans.
type toggleFamily struct {
	family, body, jsName string
	showLabel, hideLabel string
	class                string
}

var (
	releaseToggle      = toggleFamily{"release", "release-body", "Release", "Show", "Hide", ""}
	releaseNotesToggle = toggleFamily{"release-notes", "release-notes", "ReleaseNotes", "Release Notes", "Release Notes", ""}
	qaNotesToggle      = toggleFamily{"qa-notes", "qa-notes", "QaNotes", "QA Notes", "QA Notes", ""}
	technicalToggle    = toggleFamily{"technical", "technical", "Technical", "More details", "Fewer details", "ticket"}
)

var toggleFamilies = []toggleFamily{releaseToggle, releaseNotesToggle, qaNotesToggle, technicalToggle}

var toggleScript = buildToggleScript()

func buildToggleScript() string {
	var b strings.Builder
	b.WriteString(`function setRegion(family, body, id, expanded) {
    document.getElementById('show-' + family + '-' + id).style.display = expanded ? 'none' : 'inline-block';
    document.getElementById('hide-' + family + '-' + id).style.display = expanded ? 'inline-block' : 'none';
    document.getElementById(body + '-' + id).style.display = expanded ? 'block' : 'none';
}`)
	for _, f := range toggleFamilies {
		fmt.Fprintf(&b, "\nfunction show%s(id) { setRegion('%s', '%s', id, true); }", f.jsName, f.family, f.body)
		fmt.Fprintf(&b, "\nfunction hide%s(id) { setRegion('%s', '%s', id, false); }", f.jsName, f.family, f.body)
	}
	return b.String()
}

const stylesheet = `body {
    font-family: sans-serif;
    -webkit-text-size-adjust: 100%;
}
a { color: #0175bb; }
a:visited { color: #1997eb; }
blockquote { border-left: 0.2em solid #8dd2fc; }
pre, code {
    background-color: #f4fafb;
    border: 0.05em solid #bde6fe;
    border-radius: 0.2em;
}
pre {
    overflow: scroll;
    padding: 0.6em;
    margin-left: 1.5em;
}
code {
    display: inline-block;
    font-family: Courier, monospace;
    padding: 0.1em 0.2em;
}
pre > code { padding: 0; border: none; }
p { margin-top: 0; }
ol, ul { margin-bottom: 1em; }
.unimportant-long-sha1 { word-break: break-all; }

.build-uniq-div { background: #d3ecd6; padding: 0.5em; margin-bottom: 1em; }
.build-uniq-div > .head { display: block; margin: 0 0 0.5em 0; }
.build-uniq-div > .build-uniq-data { background: white; }
.build-uniq-div > .build-uniq-data > .data { display: inline-block; margin: 0.5em 1em; }

.release-head { background: #8dd2fc; padding: 0.5em; margin-bottom: 0.2em; }
.release-head > .release-name { display: inline-block; font-size: 110%; font-weight: bold; }
.release-head > .release-since { display: inline-block; margin-left: 1em; }
.release-head > .show-release, .release-head > .hide-release { float: right; }
.release-head > .show-release > a, .release-head > .hide-release > a { color: black; }

.release-subhead > span {
    display: inline-block;
    margin: 0 0 0.1em 1em;
    padding: 0.2em 0.7em;
}
.release-subhead > .hide-release-notes, .release-subhead > .hide-qa-notes { background: #bde6fe; }
.release-notes-body { margin: 1em; padding: 1em; background: #ececec; }
.rnhover { background: #bde6fe; }

.note-head { display: inline-block; margin: 0 0 1em 0; }
.note-head > .internal-short { font-weight: bold; }
.note-head > .ticket { display: inline-block; margin-left: 1em; font-size: 90%; }
.public-release-notes, .internal-release-notes, .testing, .technical { margin-left: 1em; }
.custsrv-release-notes { margin-left: 2em; }
.custsrv-release-notes > :first-child { margin-left: -1em; }

@media (prefers-color-scheme: dark) {
    body { background-color: #292a2f; color: white; }
    a { color: #8dd2fc; }
    a:visited { color: #e5f5fe; }
    blockquote { border-left-color: #0175bb; }
    pre, code { background-color: #101030; border: 0.1em solid #07466d; border-radius: 0.3em; }
    pre > code { border: none; }
    .build-uniq-div, .build-uniq-div > .head { background: #38823e; }
    .build-uniq-div > .build-uniq-data { background: black; }
    .release-head, .release-head > span, .release-head > span > a { background-color: #0175bb; }
    .release-head > .show-release > a, .release-head > .hide-release > a { color: white; }
    .release-subhead > .hide-release-notes, .release-subhead > .hide-qa-notes { background: #8dd2fc; }
    .release-subhead > .hide-release-notes > a, .release-subhead > .hide-qa-notes > a { color: black; }
    .release-notes-body { background-color: #3f4144; }
    .rnhover { background: #0175bb; }
}`
