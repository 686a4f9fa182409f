package webhook

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ExtractedFields holds the fields found in a landing-page form.
type ExtractedFields struct {
	Name   string
	Email  string
	Phone  string
	Matter string
}

// Missing lists the required fields that were not found: a name and at
// least one contact method.
func (e ExtractedFields) Missing() []string {
	missing := make([]string, 0, 2)
	if e.Name == "" {
		missing = append(missing, "name")
	}
	if e.Email == "" && e.Phone == "" {
		missing = append(missing, "contact")
	}
	return missing
}

// Field label aliases seen on the firm's landing pages and form builders.
// Labels are compared after accent folding and removal of spaces, dashes
// and underscores, so "Teléfono", "telefono" and "tele-fono" all match.
var (
	fullNameLabels  = []string{"nombre", "name", "fullname", "nombrecompleto", "yourname", "tunombre"}
	firstNameLabels = []string{"nombres", "firstname", "primernombre", "givenname"}
	lastNameLabels  = []string{"apellido", "apellidos", "lastname", "surname", "familyname"}
	emailLabels     = []string{"correo", "email", "mail", "correoelectronico", "emailaddress", "tucorreo"}
	phoneLabels     = []string{"telefono", "phone", "celular", "movil", "whatsapp", "fono", "phonenumber", "numerodetelefono"}
	matterLabels    = []string{"mensaje", "motivo", "message", "consulta", "comentario", "comentarios", "caso", "descripcion", "asunto"}
)

var labelFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ExtractFields maps an arbitrary form field map onto lead fields. Unknown
// labels are ignored. A full-name field wins over separate first and last
// name fields.
func ExtractFields(data map[string]string) ExtractedFields {
	var (
		result      ExtractedFields
		first, last string
	)

	for key, value := range data {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch label := normalizeLabel(key); {
		case matchesAny(label, fullNameLabels):
			result.Name = value
		case matchesAny(label, firstNameLabels):
			first = value
		case matchesAny(label, lastNameLabels):
			last = value
		case matchesAny(label, emailLabels):
			result.Email = value
		case matchesAny(label, phoneLabels):
			result.Phone = value
		case matchesAny(label, matterLabels):
			result.Matter = value
		}
	}

	if result.Name == "" {
		result.Name = strings.TrimSpace(first + " " + last)
	}
	return result
}

func normalizeLabel(label string) string {
	folded, _, err := transform.String(labelFolder, strings.ToLower(strings.TrimSpace(label)))
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(label))
	}
	return strings.NewReplacer("-", "", "_", "", " ", "", ".", "").Replace(folded)
}

func matchesAny(label string, patterns []string) bool {
	for _, p := range patterns {
		if label == p {
			return true
		}
	}
	return false
}
