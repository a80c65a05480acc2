package vsd

// InsuranceData is the content of EF.VD.
type InsuranceData struct {
	PayerID       string `json:"versicherungsnummer"` // Kostentraegerkennung
	PayerName     string `json:"versicherungsname"`
	CoverageStart Date   `json:"beginn"`
	CoverageEnd   *Date  `json:"ende,omitempty"`
}

// ParseInsuranceData parses the decompressed EF.VD document. The payer is the
// Kostentraeger element; a nested AbrechnenderKostentraeger is ignored.
func ParseInsuranceData(doc []byte) (*InsuranceData, error) {
	f := fieldSet{}
	err := walk(doc, func(path []string, text string) {
		name := path[len(path)-1]
		switch name {
		case "Beginn", "Ende":
			f.setOnce(name, text)
		case "Kostentraegerkennung", "Name":
			if len(path) >= 2 && path[len(path)-2] == "Kostentraeger" {
				f[name] = text
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if err := f.required("Kostentraegerkennung", "Name", "Beginn"); err != nil {
		return nil, err
	}

	start, err := parseDate("Beginn", f["Beginn"])
	if err != nil {
		return nil, err
	}
	data := &InsuranceData{
		PayerID:       f["Kostentraegerkennung"],
		PayerName:     f["Name"],
		CoverageStart: start,
	}
	if s := f["Ende"]; s != "" {
		end, err := parseDate("Ende", s)
		if err != nil {
			return nil, err
		}
		data.CoverageEnd = &end
	}
	return data, nil
}
