package homeplug

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/muurk/fritzpowerline/internal/tr064"
)

// Field names of a device entry as returned by the X_AVM-DE_Homeplug service
const (
	FieldMACAddress       = "NewMACAddress"
	FieldActive           = "NewActive"
	FieldName             = "NewName"
	FieldModel            = "NewModel"
	FieldUpdateAvailable  = "NewUpdateAvailable"
	FieldUpdateSuccessful = "NewUpdateSuccessful"
	FieldNumberOfEntries  = "NewNumberOfEntries"
)

// Record is a raw device entry exactly as the router returned it
type Record map[string]string

// Keys returns the field names in sorted order
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Text returns a field value, failing if the field is absent
func (r Record) Text(field string) (string, error) {
	v, ok := r[field]
	if !ok {
		return "", tr064.NewParseError(fmt.Sprintf("device entry has no %s field", field), nil)
	}
	return v, nil
}

// Int returns a field as an integer
func (r Record) Int(field string) (int, error) {
	v, err := r.Text(field)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, tr064.NewParseError(fmt.Sprintf("field %s is not an integer: %q", field, v), err)
	}
	return n, nil
}

// Bool returns a field as a flag. Besides TR-064 booleans ("0", "1",
// "true", "false") the update-result words AVM uses are understood:
// "succeeded" is true; "failed", "unknown" and "" are false.
func (r Record) Bool(field string) (bool, error) {
	v, err := r.Text(field)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "succeeded":
		return true, nil
	case "0", "false", "no", "failed", "unknown", "":
		return false, nil
	default:
		return false, tr064.NewParseError(fmt.Sprintf("field %s is not a flag: %q", field, v), nil)
	}
}

func recordFromArguments(args tr064.Arguments) Record {
	r := make(Record, len(args))
	for k, v := range args {
		r[k] = v
	}
	return r
}
