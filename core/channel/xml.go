package channel

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// XMLElement is one decoded element together with its source text,
// start tag and attributes included.
type XMLElement[T any] struct {
	Value T
	Raw   string
}

// DecodeXMLElements decodes every <name> element found under the document
// root. The root element must be named root.
func DecodeXMLElements[T any](body []byte, root, name string) ([]XMLElement[T], error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var out []XMLElement[T]
	seenRoot := false
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if !seenRoot {
				return nil, fmt.Errorf("missing <%s> element", root)
			}
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !seenRoot {
			if start.Name.Local != root {
				return nil, fmt.Errorf("unexpected root <%s>, want <%s>", start.Name.Local, root)
			}
			seenRoot = true
			continue
		}
		if start.Name.Local != name {
			if err := dec.Skip(); err != nil {
				return nil, err
			}
			continue
		}
		var v T
		if err := dec.DecodeElement(&v, &start); err != nil {
			return nil, err
		}
		out = append(out, XMLElement[T]{Value: v, Raw: string(body[offset:dec.InputOffset()])})
	}
}
