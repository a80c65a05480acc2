package vsd

import "strings"

// PersonalData is the content of EF.PD.
type PersonalData struct {
	InsurantID  string `json:"versichertennummer"`
	Birthdate   Date   `json:"birthdate"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Gender      string `json:"gender"`
	Prefix      string `json:"prefix,omitempty"`      // Vorsatzwort: von, van, zu, ...
	NameSuffix  string `json:"name_suffix,omitempty"` // Namenszusatz: Graf, Freifrau, ...
	Title       string `json:"title,omitempty"`       // Dr., Prof., ...
	Street      string `json:"address"`
	HouseNumber string `json:"house_number,omitempty"`
	ZIP         string `json:"zip"`
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
}

// FullName joins title, first name, prefix, last name and suffix.
func (p *PersonalData) FullName() string {
	var parts []string
	for _, s := range []string{p.Title, p.FirstName, p.NameSuffix, p.Prefix, p.LastName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

var personalFields = map[string]bool{
	"Versicherten_ID": true, "Geburtsdatum": true, "Vorname": true, "Nachname": true,
	"Geschlecht": true, "Vorsatzwort": true, "Namenszusatz": true, "Titel": true,
	"Strasse": true, "Hausnummer": true, "Postleitzahl": true, "Ort": true,
	"Wohnsitzlaendercode": true,
}

// ParsePersonalData parses the decompressed EF.PD document.
func ParsePersonalData(doc []byte) (*PersonalData, error) {
	f := fieldSet{}
	err := walk(doc, func(path []string, text string) {
		if name := path[len(path)-1]; personalFields[name] {
			f.setOnce(name, text)
		}
	})
	if err != nil {
		return nil, err
	}
	if err := f.required("Versicherten_ID", "Geburtsdatum", "Vorname", "Nachname",
		"Geschlecht", "Strasse", "Postleitzahl", "Ort", "Wohnsitzlaendercode"); err != nil {
		return nil, err
	}

	birth, err := parseDate("Geburtsdatum", f["Geburtsdatum"])
	if err != nil {
		return nil, err
	}

	return &PersonalData{
		InsurantID:  f["Versicherten_ID"],
		Birthdate:   birth,
		FirstName:   f["Vorname"],
		LastName:    f["Nachname"],
		Gender:      f["Geschlecht"],
		Prefix:      f["Vorsatzwort"],
		NameSuffix:  f["Namenszusatz"],
		Title:       f["Titel"],
		Street:      f["Strasse"],
		HouseNumber: f["Hausnummer"],
		ZIP:         f["Postleitzahl"],
		City:        f["Ort"],
		CountryCode: f["Wohnsitzlaendercode"],
	}, nil
}
