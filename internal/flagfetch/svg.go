package flagfetch

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SVGInfo is what ParseSVG reads from the root <svg> element.
type SVGInfo struct {
	ViewBox string
	Width   float64 // from the viewBox, 0 if absent
	Height  float64
}

var errNotSVG = errors.New("response is not an SVG document")

var utf8BOM = []byte("\xef\xbb\xbf")

// rootElement returns the local name of the document's first element. Only the
// XML declaration, comments, directives and whitespace may precede it.
func rootElement(data []byte) (string, error) {
	d := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			return "", errNotSVG
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", errNotSVG, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t.Name.Local, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return "", errNotSVG
			}
		}
	}
}

// ParseSVG checks that data is a document whose root element is <svg> and reads
// its viewBox.
func ParseSVG(data []byte) (SVGInfo, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return SVGInfo{}, errNotSVG
	}
	name, err := rootElement(data)
	if err != nil {
		return SVGInfo{}, err
	}
	if !strings.EqualFold(name, "svg") {
		return SVGInfo{}, fmt.Errorf("%w: root element is <%s>", errNotSVG, name)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return SVGInfo{}, fmt.Errorf("parse svg: %w", err)
	}
	root := doc.Find("svg").First()
	if root.Length() == 0 {
		return SVGInfo{}, errNotSVG
	}

	info := SVGInfo{}
	vb, ok := root.Attr("viewBox")
	if !ok {
		vb, _ = root.Attr("viewbox")
	}
	info.ViewBox = strings.TrimSpace(vb)

	fields := strings.FieldsFunc(info.ViewBox, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 4 {
		w, werr := strconv.ParseFloat(fields[2], 64)
		h, herr := strconv.ParseFloat(fields[3], 64)
		if werr == nil && herr == nil {
			info.Width, info.Height = w, h
		}
	}
	return info, nil
}
