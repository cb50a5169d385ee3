package calendar

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

// holidayFile is the YAML layout of a holidays file:
//
//	holidays: [2025-01-01, 2025-12-25]
//	calendars:
//	  colonial: [2025-05-26]
//
// Named calendars extend the default list.
type holidayFile struct {
	Holidays  []string            `yaml:"holidays"`
	Calendars map[string][]string `yaml:"calendars"`
}

// LoadHolidays reads the default holiday list from a YAML file.
func LoadHolidays(path string) (HolidaySet, error) {
	return LoadNamedHolidays(path, "")
}

// LoadNamedHolidays reads the default list plus the named calendar. An empty
// name loads only the default list; an unknown name is an error.
func LoadNamedHolidays(path, name string) (HolidaySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewIOError("read holidays file", err).WithContext("path", path)
	}
	return ParseHolidays(data, name)
}

// ParseHolidays decodes a holidays document.
func ParseHolidays(data []byte, name string) (HolidaySet, error) {
	var f holidayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, apperrors.NewValidationError("invalid holidays document", err)
	}

	dates := f.Holidays
	if name != "" {
		named, ok := f.Calendars[name]
		if !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown holiday calendar %q", name), nil)
		}
		dates = append(dates, named...)
	}

	set := make(HolidaySet, len(dates))
	for _, s := range dates {
		d, err := domain.ParseDate(s)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid holiday date", err)
		}
		set.Add(d)
	}
	return set, nil
}
