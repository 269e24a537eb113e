package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// docstringOf extracts the docstring of a class or function definition: the
// string literal that forms the first statement of the body. Returns "" when
// there is none. The docstring is extracted independently and never stripped
// from the definition's content.
func docstringOf(node *sitter.Node, src []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return cleanDocstring(str.Content(src))
}

// cleanDocstring strips the quoting (and any string prefix such as r or b)
// from a string literal and normalizes indentation the way Python's
// inspect.cleandoc does.
func cleanDocstring(raw string) string {
	s := raw

	// Drop the string prefix, if any (r, b, u, f in any combination).
	i := 0
	for i < len(s) && s[i] != '"' && s[i] != '\'' {
		i++
	}
	s = s[i:]

	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = s[len(q) : len(s)-len(q)]
			break
		}
	}

	return cleandoc(s)
}

// cleandoc trims the first line and removes the common leading indentation
// from the remaining lines, then drops surrounding blank lines.
func cleandoc(s string) string {
	lines := strings.Split(s, "\n")

	margin := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimSpace(lines[0])
	for i, line := range lines[1:] {
		if margin > 0 && len(line) >= margin {
			line = line[margin:]
		} else if margin > 0 {
			line = strings.TrimLeft(line, " \t")
		}
		lines[i+1] = strings.TrimRight(line, " \t")
	}

	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
