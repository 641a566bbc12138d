package engine

import "strings"

// EditFormatWhole asks the model for complete replacement file contents.
const EditFormatWhole = "whole"

// fileEdit is one parsed edit: a path and the full new content.
type fileEdit struct {
	Path    string
	Content string
}

// parseWholeFileEdits extracts whole-file edits from a model reply. An edit
// is a path on its own line immediately followed by a fenced code block; the
// block body is the complete new file content. Anything else is prose.
func parseWholeFileEdits(response string) []fileEdit {
	lines := strings.Split(response, "\n")
	var edits []fileEdit

	for i := 0; i < len(lines); i++ {
		path := candidatePath(lines[i])
		if path == "" || i+1 >= len(lines) || !isFence(lines[i+1]) {
			continue
		}

		var body []string
		closed := false
		j := i + 2
		for ; j < len(lines); j++ {
			if isFence(lines[j]) {
				closed = true
				break
			}
			body = append(body, lines[j])
		}
		if !closed {
			break
		}

		content := strings.Join(body, "\n")
		if content != "" {
			content += "\n"
		}
		edits = append(edits, fileEdit{Path: path, Content: content})
		i = j
	}
	return edits
}

// candidatePath returns the trimmed line if it plausibly names a file,
// empty otherwise. Paths contain no spaces and at least one dot or slash.
func candidatePath(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "**")
	s = strings.TrimSuffix(s, "**")
	s = strings.Trim(s, "`")
	if s == "" || strings.ContainsAny(s, " \t") {
		return ""
	}
	if !strings.ContainsAny(s, "./") {
		return ""
	}
	return s
}

func isFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}
