// =============================================================================
// Survey Address Converter - XML Writer Module
// =============================================================================
//
// This module serializes element trees into indented XML documents and parses
// them back for validation. The per-row building document is assembled in
// edificio.go; this file only knows about generic elements.
//
// OUTPUT FORMAT:
//   <?xml version="1.0" encoding="UTF-8"?>
//   <edificio tipo="M" versao="7.9.2">
//     <gravado>false</gravado>
//     <enderecoEdificio>
//       <id>93128133</id>
//       ...
//     </enderecoEdificio>
//   </edificio>
//
// Elements without a value and without children are written self-closing.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the XML declaration.
	// Default: "UTF-8"
	Encoding string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "UTF-8",
	}
}

// =============================================================================
// ELEMENT TREE
// =============================================================================

// XMLElement represents a generic XML element. The struct tags are used when
// parsing; serialization goes through writeElement.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr   `xml:",any,attr"`
	Value      string       `xml:",chardata"`
	Children   []XMLElement `xml:",any"`
}

// NewElement creates an element with a text value.
func NewElement(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: name},
		Value:   value,
	}
}

// SetAttr adds or replaces an attribute.
func (e *XMLElement) SetAttr(name, value string) {
	for i := range e.Attributes {
		if e.Attributes[i].Name.Local == name {
			e.Attributes[i].Value = value
			return
		}
	}
	e.Attributes = append(e.Attributes, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// Attr returns the value of an attribute and whether it is present.
func (e *XMLElement) Attr(name string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Add appends a text child and returns the receiver for chaining.
func (e *XMLElement) Add(name, value string) *XMLElement {
	e.Children = append(e.Children, NewElement(name, value))
	return e
}

// AddElement appends a child element.
func (e *XMLElement) AddElement(child XMLElement) *XMLElement {
	e.Children = append(e.Children, child)
	return e
}

// Child returns the first direct child with the given name, or nil.
func (e *XMLElement) Child(name string) *XMLElement {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == name {
			return &e.Children[i]
		}
	}
	return nil
}

// Text follows a path of child names and returns the value of the last one.
// The second result is false when any step is missing.
func (e *XMLElement) Text(path ...string) (string, bool) {
	current := e
	for _, name := range path {
		current = current.Child(name)
		if current == nil {
			return "", false
		}
	}
	return current.Value, true
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// Marshal serializes root with the default options.
func Marshal(root *XMLElement) []byte {
	return MarshalWithOptions(root, DefaultGenerateOptions())
}

// MarshalWithOptions serializes root into an indented document.
func MarshalWithOptions(root *XMLElement, options GenerateOptions) []byte {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(fmt.Sprintf("<?xml version=\"%s\" encoding=\"%s\"?>\n",
			options.XMLVersion, options.Encoding))
	}

	writeElement(&buffer, *root, options.Indent, 0)

	return buffer.Bytes()
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	buffer.WriteString(strings.Repeat(indent, level))

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)

	for _, attr := range element.Attributes {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name.Local, escapeXML(attr.Value)))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")
		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}
		buffer.WriteString(strings.Repeat(indent, level))
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// =============================================================================
// PARSING
// =============================================================================

// Parse reads a document produced by Marshal (or any well-formed XML) into an
// element tree. Indentation between child elements is dropped.
func Parse(data []byte) (*XMLElement, error) {
	var root XMLElement
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	trimLayout(&root)
	return &root, nil
}

func trimLayout(e *XMLElement) {
	if len(e.Children) == 0 {
		return
	}
	if strings.TrimSpace(e.Value) == "" {
		e.Value = ""
	}
	for i := range e.Children {
		trimLayout(&e.Children[i])
	}
}
