package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/kr/pretty"

	"github.com/gregLibert/egk-reader/pkg/egk"
	"github.com/gregLibert/egk-reader/pkg/vsd"
)

// Report is the printed outcome of one card read.
type Report struct {
	ATR             string             `json:"atr"`
	ICCSN           string             `json:"iccsn,omitempty"`
	Version1        egk.Version        `json:"version_1"`
	Version2        egk.Version        `json:"version_2"`
	Version3        egk.Version        `json:"version_3"`
	VersionXSD      egk.Version        `json:"version_xsd"`
	Generation      egk.Generation     `json:"generation"`
	LastDataUpdate  time.Time          `json:"last_data_update"`
	TransactionOpen bool               `json:"transaction_open"`
	PersonalData    *vsd.PersonalData  `json:"personal_data,omitempty"`
	InsuranceData   *vsd.InsuranceData `json:"versicherungs_data,omitempty"`
	Errors          []string           `json:"errors,omitempty"`
}

func buildReport(res *egk.Result) Report {
	rep := Report{
		ATR:             res.ATRString(),
		ICCSN:           res.ICCSN,
		Version1:        res.Versions[0],
		Version2:        res.Versions[1],
		Version3:        res.Versions[2],
		VersionXSD:      res.Status.SchemaVersion,
		Generation:      res.Generation,
		LastDataUpdate:  res.Status.LastUpdate,
		TransactionOpen: res.Status.TransactionOpen,
	}

	if d := res.PersonalData; d.Available() {
		pd, err := vsd.ParsePersonalData(d.XML)
		if err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("%s: %v", d.Name, err))
		} else {
			rep.PersonalData = pd
		}
	} else if d.Err != nil {
		rep.Errors = append(rep.Errors, d.Err.Error())
	}

	if d := res.InsuranceData; d.Available() {
		vd, err := vsd.ParseInsuranceData(d.XML)
		if err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("%s: %v", d.Name, err))
		} else {
			rep.InsuranceData = vd
		}
	} else if d.Err != nil {
		rep.Errors = append(rep.Errors, d.Err.Error())
	}
	return rep
}

type renderFunc func(w io.Writer, rep Report) error

// renderer picks the output format; an empty name means text on a terminal and
// json everywhere else.
func renderer(name string, terminal bool) (renderFunc, error) {
	if name == "" {
		name = "json"
		if terminal {
			name = "text"
		}
	}
	switch name {
	case "text":
		return renderText, nil
	case "json":
		return renderJSON, nil
	case "pretty":
		return renderPretty, nil
	}
	return nil, fmt.Errorf("unknown output format %q", name)
}

func renderJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func renderPretty(w io.Writer, rep Report) error {
	_, err := fmt.Fprintf(w, "%# v\n", pretty.Formatter(rep))
	return err
}

var (
	keyColor   = color.New(color.FgCyan)
	errorColor = color.New(color.FgRed, color.Bold)
)

type field struct {
	key   string
	value any
}

func textFields(rep Report) []field {
	fields := []field{
		{"atr", rep.ATR},
		{"iccsn", rep.ICCSN},
		{"version_1", rep.Version1},
		{"version_2", rep.Version2},
		{"version_3", rep.Version3},
		{"version_xsd", rep.VersionXSD},
		{"generation", rep.Generation},
		{"last_data_update", rep.LastDataUpdate.Format(time.DateTime)},
		{"transaction_open", rep.TransactionOpen},
	}
	if pd := rep.PersonalData; pd != nil {
		fields = append(fields,
			field{"versichertennummer", pd.InsurantID},
			field{"name", pd.FullName()},
			field{"birthdate", pd.Birthdate},
			field{"gender", pd.Gender},
			field{"address", strings.TrimSpace(pd.Street + " " + pd.HouseNumber)},
			field{"city", cityLine(pd.CountryCode, pd.ZIP, pd.City)},
		)
	}
	if vd := rep.InsuranceData; vd != nil {
		fields = append(fields,
			field{"versicherungsnummer", vd.PayerID},
			field{"versicherungsname", vd.PayerName},
			field{"beginn", vd.CoverageStart},
		)
		if vd.CoverageEnd != nil {
			fields = append(fields, field{"ende", *vd.CoverageEnd})
		}
	}
	return fields
}

// cityLine renders "D-10117 Berlin"; the country prefix is left out when unknown.
func cityLine(country, zip, city string) string {
	line := strings.TrimSpace(zip + " " + city)
	if country == "" {
		return line
	}
	return country + "-" + line
}

func renderText(w io.Writer, rep Report) error {
	for _, f := range textFields(rep) {
		if s, ok := f.value.(string); ok && s == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %v\n", keyColor.Sprint(f.key), f.value); err != nil {
			return err
		}
	}
	for _, e := range rep.Errors {
		if _, err := fmt.Fprintf(w, "%s %s\n", errorColor.Sprint("error:"), e); err != nil {
			return err
		}
	}
	return nil
}
