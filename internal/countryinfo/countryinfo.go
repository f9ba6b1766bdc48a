// Package countryinfo resolves a two-letter country code to its English display
// name and its dominant language using CLDR data.
package countryinfo

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/hightemp/flagpic/internal/apperrors"
	"github.com/hightemp/flagpic/internal/countries"
)

// Info describes a country.
type Info struct {
	Code         string `json:"code"`          // upper-case alpha-2
	Name         string `json:"name"`          // English display name
	LanguageCode string `json:"language_code"` // upper-case base language, e.g. "DE"
	LanguageName string `json:"language_name"` // English language name
}

// String renders the one-line summary printed by the CLI.
func (i Info) String() string {
	return fmt.Sprintf("Country(%s, %s), PopularLanguage(%s, %s)", i.Name, i.Code, i.LanguageName, i.LanguageCode)
}

// Provider looks up country metadata by code.
type Provider interface {
	Lookup(code string) (Info, error)
}

// CLDR is a Provider backed by golang.org/x/text. The dominant language is the
// CLDR likely-subtag language for the territory.
type CLDR struct {
	regions   display.Namer
	languages display.Namer
}

// NewCLDR returns a provider that reports names in English.
func NewCLDR() *CLDR {
	return &CLDR{
		regions:   display.English.Regions(),
		languages: display.English.Languages(),
	}
}

// Lookup returns the Info for code. Codes are case-insensitive; anything that is
// not a known two-letter country code yields an *apperrors.InvalidCodeError.
//
// The language is the CLDR likely-subtag language, not the one with the largest
// population share. Where the two disagree (BE gives Dutch, LU gives French, ML
// gives Bambara) the result can differ from a census-based answer.
func (p *CLDR) Lookup(code string) (Info, error) {
	if len([]rune(code)) != 2 {
		return Info{}, apperrors.NewInvalidCode(code)
	}
	upper := strings.ToUpper(code)
	if !countries.IsValid(upper) {
		return Info{}, apperrors.NewInvalidCode(code)
	}
	region, err := language.ParseRegion(upper)
	if err != nil {
		return Info{}, &apperrors.InvalidCodeError{Code: code, Reason: err.Error()}
	}

	info := Info{Code: upper, Name: p.regions.Name(region)}
	if info.Name == "" {
		info.Name = countries.GetName(upper)
	}

	tag, err := language.Compose(region)
	if err != nil {
		return info, nil
	}
	base, conf := tag.Base()
	if conf == language.No || base.String() == "und" {
		// Uninhabited territories (AQ, BV, HM) have no language.
		return info, nil
	}
	info.LanguageCode = strings.ToUpper(base.String())
	info.LanguageName = p.languages.Name(language.Make(base.String()))
	return info, nil
}
