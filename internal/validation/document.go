package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/survey-xml-converter/internal/xmlwriter"
)

// requiredBlocks are the direct children every building document carries.
var requiredBlocks = []string{
	xmlwriter.AddressElement,
	xmlwriter.TecnicoElement,
	xmlwriter.EmpresaElement,
}

// ValidateXML checks the structure of a building document: the root must be
// <edificio> with the address, technician and company blocks. Missing
// tipo or versao attributes are warnings.
func ValidateXML(doc []byte) *ValidationResult {
	result := NewResult()

	root, err := xmlwriter.Parse(doc)
	if err != nil {
		result.addError("", "parse", fmt.Sprintf("Erro de parsing XML: %v", err))
		return result
	}

	if root.XMLName.Local != xmlwriter.RootElement {
		result.addError(root.XMLName.Local, "root",
			fmt.Sprintf("Elemento obrigatório '%s' não encontrado no XML", xmlwriter.RootElement))
	}

	for _, name := range requiredBlocks {
		result.FieldsValidated++
		if root.Child(name) == nil {
			result.addError(name, "required_element",
				fmt.Sprintf("Elemento obrigatório '%s' não encontrado no XML", name))
		}
	}

	for _, attr := range []string{"tipo", "versao"} {
		if _, ok := root.Attr(attr); !ok {
			result.addWarning(attr, "required_attribute",
				fmt.Sprintf("Atributo '%s' não encontrado no elemento raiz", attr))
		}
	}

	return result
}

// ValidateXMLComplements checks the complement codes of a building document.
// Complements 1 and 2 must be present and non-empty; complement 3 is optional
// but must not be declared empty. Every finding is a warning.
func ValidateXMLComplements(doc []byte) *ValidationResult {
	result := NewResult()

	root, err := xmlwriter.Parse(doc)
	if err != nil {
		result.addError("", "parse", fmt.Sprintf("Erro ao validar complementos: %v", err))
		return result
	}

	address := root.Child(xmlwriter.AddressElement)
	if address == nil {
		return result
	}

	for i, name := range []string{"id_complemento1", "id_complemento2"} {
		result.FieldsValidated++
		if c := address.Child(name); c == nil || strings.TrimSpace(c.Value) == "" {
			result.addWarning(name, "complement", fmt.Sprintf("Complemento%d não encontrado ou vazio", i+1))
		}
	}

	if c := address.Child("id_complemento3"); c != nil {
		result.FieldsValidated++
		if strings.TrimSpace(c.Value) == "" {
			result.addWarning("id_complemento3", "complement", "Complemento3 definido mas vazio")
		}
	}

	return result
}
