package textsub

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"mediabox/internal/media"
)

// Parse converts tagged cue text into text parts. Recognised tags are
// <i>, <u>, <s> and <font color="#rrggbb">; other tags (<b>, <c.x>,
// <v Speaker>, inline timestamps) are dropped and their text kept.
// Newlines become LineBreak parts.
func Parse(payload string) []media.TextPart {
	payload = strings.ReplaceAll(payload, "\r\n", "\n")
	var parts []media.TextPart
	var run strings.Builder
	flush := func() {
		if run.Len() == 0 {
			return
		}
		parts = append(parts, media.Text(html.UnescapeString(run.String())))
		run.Reset()
	}

	for i := 0; i < len(payload); {
		c := payload[i]
		if c == '\n' {
			flush()
			parts = append(parts, media.LineBreak{})
			i++
			continue
		}
		if c != '<' {
			run.WriteByte(c)
			i++
			continue
		}
		end := strings.IndexByte(payload[i:], '>')
		if end < 0 || !isTag(payload[i+1:i+end]) {
			run.WriteByte(c)
			i++
			continue
		}
		tag := payload[i+1 : i+end]
		i += end + 1
		part, ok := parseTag(tag)
		if !ok {
			continue
		}
		flush()
		parts = append(parts, part)
	}
	flush()
	return parts
}

// isTag reports whether body, the text between < and >, is markup: a tag
// name made of letters and digits, optionally closing, or an inline
// timestamp. Anything else is literal text such as "x < 3 and y > 2".
func isTag(body string) bool {
	if body != "" && body[0] >= '0' && body[0] <= '9' {
		return strings.Trim(body, "0123456789:.") == "" && strings.Contains(body, ":")
	}
	name := strings.TrimPrefix(body, "/")
	if idx := strings.IndexAny(name, " \t."); idx >= 0 {
		name = name[:idx]
	}
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isLetter && !(isDigit && i > 0) {
			return false
		}
	}
	return true
}

func parseTag(tag string) (media.TextPart, bool) {
	closing := strings.HasPrefix(tag, "/")
	name := strings.TrimPrefix(tag, "/")
	attrs := ""
	if idx := strings.IndexAny(name, " \t."); idx >= 0 {
		name, attrs = name[:idx], name[idx:]
	}
	switch strings.ToLower(name) {
	case "i":
		return media.Italic(!closing), true
	case "u":
		return media.Underline(!closing), true
	case "s":
		return media.Strikeout(!closing), true
	case "font":
		if closing {
			return nil, false
		}
		rgb, ok := fontColor(attrs)
		if !ok {
			return nil, false
		}
		return media.Fill{Color: media.ColorPrimary, RGB: rgb}, true
	}
	return nil, false
}

func fontColor(attrs string) (uint32, bool) {
	lower := strings.ToLower(attrs)
	idx := strings.Index(lower, "color=")
	if idx < 0 {
		return 0, false
	}
	value := strings.Trim(attrs[idx+len("color="):], " \t\"'")
	if cut := strings.IndexAny(value, " \t\"'"); cut >= 0 {
		value = value[:cut]
	}
	value = strings.TrimPrefix(value, "#")
	if len(value) != 6 {
		return 0, false
	}
	rgb, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(rgb), true
}

// RenderOptions selects the markup a dialect supports.
type RenderOptions struct {
	// Escape replaces &, < and > with entities.
	Escape bool
	// FontColor renders primary Fill parts as <font color> tags.
	FontColor bool
}

// Render converts text parts back to tagged cue text. Tags still open at the
// end of the cue are closed in reverse order.
func Render(parts []media.TextPart, opts RenderOptions) string {
	var b strings.Builder
	var open []string
	toggle := func(tag string, on bool) {
		idx := -1
		for i, t := range open {
			if t == tag {
				idx = i
			}
		}
		switch {
		case on && idx < 0:
			open = append(open, tag)
			fmt.Fprintf(&b, "<%s>", tag)
		case !on && idx >= 0:
			open = append(open[:idx], open[idx+1:]...)
			fmt.Fprintf(&b, "</%s>", tag)
		}
	}

	for _, part := range parts {
		switch p := part.(type) {
		case media.Text:
			text := string(p)
			if opts.Escape {
				text = escaper.Replace(text)
			}
			b.WriteString(text)
		case media.LineBreak:
			b.WriteByte('\n')
		case media.SmartBreak:
			b.WriteByte(' ')
		case media.Italic:
			toggle("i", bool(p))
		case media.Underline:
			toggle("u", bool(p))
		case media.Strikeout:
			toggle("s", bool(p))
		case media.Fill:
			if !opts.FontColor || p.Color != media.ColorPrimary {
				continue
			}
			toggle("font", false)
			open = append(open, "font")
			fmt.Fprintf(&b, `<font color="#%06x">`, p.RGB&0xFFFFFF)
		}
	}
	for i := len(open) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "</%s>", open[i])
	}
	return b.String()
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
