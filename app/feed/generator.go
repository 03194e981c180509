package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders the channel and its items as an RSS 2.0 document. A channel
// with zero items is valid output.
func (g *Generator) Run(channel Channel, items []Item) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channel.Title, 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", channel.Description, 4)

	if channel.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(channel.SelfLink)))
	}

	if channel.Language != "" {
		g.writeElement(&buf, "language", channel.Language, 4)
	}
	if channel.Copyright != "" {
		g.writeElement(&buf, "copyright", channel.Copyright, 4)
	}

	g.writeElement(&buf, "lastBuildDate", time.Now().UTC().Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", cmp.Or(channel.Generator, "AUST-rss"), 4)

	for _, item := range items {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String()
}

func (g *Generator) writeItem(buf *bytes.Buffer, item Item) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", item.Link, 6)
	g.writeElement(buf, "description", cmp.Or(item.Description, item.Title), 6)
	g.writeElement(buf, "pubDate", item.PublishedAt.UTC().Format(time.RFC1123Z), 6)

	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", item.IsPermaLink()))
	xml.EscapeText(buf, []byte(item.GUID))
	buf.WriteString("</guid>\n")

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
