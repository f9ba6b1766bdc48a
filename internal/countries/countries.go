// Package countries provides the ISO-3166 alpha-2 code registry used to validate
// codes and to enumerate every country for batch generation.
package countries

import (
	"bufio"
	_ "embed"
	"fmt"
	"strings"
	"sync"
)

//go:embed iso3166.txt
var iso3166Data string

// Country is one registry entry.
type Country struct {
	Code string // upper-case alpha-2
	Name string // English short name
}

var (
	byCode map[string]Country
	all    []Country
	once   sync.Once
)

func load() {
	once.Do(func() {
		byCode = make(map[string]Country)
		all = make([]Country, 0, 256)

		scanner := bufio.NewScanner(strings.NewReader(iso3166Data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, ",", 2)
			if len(parts) != 2 {
				continue
			}
			c := Country{
				Code: strings.ToUpper(strings.TrimSpace(parts[0])),
				Name: strings.TrimSpace(parts[1]),
			}
			byCode[c.Code] = c
			all = append(all, c)
		}
	})
}

// lookup returns the registry entry for code, in any case.
func lookup(code string) (Country, bool) {
	load()
	c, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// GetName returns the English name for code, or "" if the code is unknown.
func GetName(code string) string {
	c, _ := lookup(code)
	return c.Name
}

// IsValid reports whether code is a known alpha-2 code.
func IsValid(code string) bool {
	_, ok := lookup(code)
	return ok
}

// AllCodes returns all alpha-2 codes (uppercase).
func AllCodes() []string {
	load()
	result := make([]string, len(all))
	for i, c := range all {
		result[i] = c.Code
	}
	return result
}

// AllCodesLower returns all alpha-2 codes in lowercase, the form flag files use.
func AllCodesLower() []string {
	result := AllCodes()
	for i, c := range result {
		result[i] = strings.ToLower(c)
	}
	return result
}

// Count returns the number of countries.
func Count() int {
	load()
	return len(all)
}

// LoadFromFile parses a code list (one code per line, '#' comments) and returns the
// codes in lowercase. Lines that are not two characters long are reported together
// in the returned error; the valid codes are still returned.
func LoadFromFile(content string) ([]string, error) {
	var (
		result  []string
		skipped []string
	)
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		code := strings.ToLower(line)
		if len(code) != 2 {
			skipped = append(skipped, line)
			continue
		}
		result = append(result, code)
	}
	if err := scanner.Err(); err != nil {
		return result, err
	}
	if len(skipped) > 0 {
		return result, fmt.Errorf("skipped %d malformed codes: %s", len(skipped), strings.Join(skipped, ", "))
	}
	return result, nil
}
