package render

import (
	"image/color"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading1
	blockHeading2
	blockHeading3
	blockCode
	blockListItem
)

type alignment int

const (
	alignLeft alignment = iota
	alignCenter
	alignRight
)

// block is one laid-out unit of content: a heading, paragraph, code block
// or list item, with its resolved style.
type block struct {
	kind  blockKind
	text  string
	bold  bool
	mono  bool
	color color.NRGBA
	align alignment
	size  float64
}

type document struct {
	blocks []block
	rules  styleRules
}

// parseDocument parses markup tolerantly (unknown elements are descended
// into, broken markup is recovered) and resolves each block's style from
// the sheet.
func parseDocument(content, style string) (*document, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	d := &document{rules: parseStyleRules(style)}
	d.walk(root)
	return d, nil
}

func (d *document) walk(n *html.Node) {
	switch n.Type {
	case html.ElementNode:
		switch n.Data {
		case "h1":
			d.appendBlock(blockHeading1, "h1", collectText(n, false), true, false)
			return
		case "h2":
			d.appendBlock(blockHeading2, "h2", collectText(n, false), true, false)
			return
		case "h3", "h4", "h5", "h6":
			d.appendBlock(blockHeading3, n.Data, collectText(n, false), true, false)
			return
		case "p":
			d.appendBlock(blockParagraph, "p", collectText(n, false), false, false)
			return
		case "b", "strong":
			d.appendBlock(blockParagraph, n.Data, collectText(n, false), true, false)
			return
		case "pre", "code":
			d.appendBlock(blockCode, n.Data, collectText(n, true), false, true)
			return
		case "li":
			d.appendBlock(blockListItem, "li", "• "+collectText(n, false), false, false)
			return
		case "script", "style", "head":
			// Script execution is not supported; style elements are
			// ignored in favor of the dedicated style input.
			return
		}
	case html.TextNode:
		// Text not wrapped in a known block element renders as a
		// paragraph. Handled elements never recurse, so any text node
		// reached here is bare.
		if text := normalizeSpace(n.Data); text != "" {
			d.appendBlock(blockParagraph, "p", text, false, false)
		}
		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		d.walk(child)
	}
}

func (d *document) appendBlock(kind blockKind, tag, text string, bold, mono bool) {
	if text == "" {
		return
	}

	b := block{
		kind:  kind,
		text:  text,
		bold:  bold,
		mono:  mono,
		color: color.NRGBA{A: 0xFF}, // black
		size:  defaultSize(kind),
	}
	if v, ok := d.rules.lookup(tag, "color"); ok {
		if c, ok := parseColor(v); ok {
			b.color = c
		}
	}
	if v, ok := d.rules.lookup(tag, "font-size"); ok {
		if s, ok := parseSize(v); ok {
			b.size = s
		}
	}
	if v, ok := d.rules.lookup(tag, "text-align"); ok {
		switch v {
		case "center":
			b.align = alignCenter
		case "right":
			b.align = alignRight
		}
	}
	d.blocks = append(d.blocks, b)
}

// pageBackground returns the body background-color from the style sheet,
// which overrides the solid color configured in the render options.
func (d *document) pageBackground() (color.NRGBA, bool) {
	if v, ok := d.rules.lookup("body", "background-color"); ok {
		return parseColor(v)
	}
	return color.NRGBA{}, false
}

func defaultSize(kind blockKind) float64 {
	switch kind {
	case blockHeading1:
		return 32
	case blockHeading2:
		return 26
	case blockHeading3:
		return 22
	case blockCode:
		return 14
	default:
		return 16
	}
}

// collectText concatenates the text content beneath a node. Code blocks
// keep their line structure; everything else collapses whitespace.
func collectText(n *html.Node, preserveLines bool) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			sb.WriteString("\n")
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		visit(child)
	}

	if preserveLines {
		return strings.Trim(sb.String(), "\n")
	}
	return normalizeSpace(sb.String())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// =============================================================================
// Style sheet subset: `selector { prop: value; }` rules matched by tag name
// =============================================================================

type styleRules map[string]map[string]string

var styleRuleRe = regexp.MustCompile(`([^{}]+)\{([^{}]*)\}`)

func parseStyleRules(style string) styleRules {
	rules := make(styleRules)
	for _, m := range styleRuleRe.FindAllStringSubmatch(style, -1) {
		props := make(map[string]string)
		for _, decl := range strings.Split(m[2], ";") {
			key, value, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			key = strings.ToLower(strings.TrimSpace(key))
			value = strings.ToLower(strings.TrimSpace(value))
			if key != "" && value != "" {
				props[key] = value
			}
		}
		if len(props) == 0 {
			continue
		}
		for _, sel := range strings.Split(m[1], ",") {
			sel = strings.ToLower(strings.TrimSpace(sel))
			if sel == "" {
				continue
			}
			if existing, ok := rules[sel]; ok {
				for k, v := range props {
					existing[k] = v
				}
			} else {
				copied := make(map[string]string, len(props))
				for k, v := range props {
					copied[k] = v
				}
				rules[sel] = copied
			}
		}
	}
	return rules
}

func (r styleRules) lookup(tag, prop string) (string, bool) {
	if props, ok := r[tag]; ok {
		if v, ok := props[prop]; ok {
			return v, true
		}
	}
	if props, ok := r["*"]; ok {
		if v, ok := props[prop]; ok {
			return v, true
		}
	}
	return "", false
}

var namedColors = map[string]color.NRGBA{
	"black":   {0x00, 0x00, 0x00, 0xFF},
	"white":   {0xFF, 0xFF, 0xFF, 0xFF},
	"red":     {0xFF, 0x00, 0x00, 0xFF},
	"green":   {0x00, 0x80, 0x00, 0xFF},
	"blue":    {0x00, 0x00, 0xFF, 0xFF},
	"yellow":  {0xFF, 0xFF, 0x00, 0xFF},
	"gray":    {0x80, 0x80, 0x80, 0xFF},
	"grey":    {0x80, 0x80, 0x80, 0xFF},
	"orange":  {0xFF, 0xA5, 0x00, 0xFF},
	"purple":  {0x80, 0x00, 0x80, 0xFF},
	"silver":  {0xC0, 0xC0, 0xC0, 0xFF},
	"magenta": {0xFF, 0x00, 0xFF, 0xFF},
	"cyan":    {0x00, 0xFF, 0xFF, 0xFF},
}

// parseColor accepts #rgb, #rrggbb, #aarrggbb and a handful of names.
func parseColor(s string) (color.NRGBA, bool) {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, false
	}

	hex := s[1:]
	switch len(hex) {
	case 3:
		var out [3]uint8
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseUint(hex[i:i+1], 16, 8)
			if err != nil {
				return color.NRGBA{}, false
			}
			out[i] = uint8(v * 17)
		}
		return color.NRGBA{R: out[0], G: out[1], B: out[2], A: 0xFF}, true
	case 6:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, false
		}
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, true
	case 8:
		v, err := strconv.ParseUint(hex, 16, 64)
		if err != nil {
			return color.NRGBA{}, false
		}
		return color.NRGBA{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
	default:
		return color.NRGBA{}, false
	}
}

// parseSize accepts bare numbers and px suffixes.
func parseSize(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 || v > 512 {
		return 0, false
	}
	return v, true
}
