package tr064

import (
	"encoding/xml"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/huin/goupnp/soap"
)

// Arguments holds the named in or out arguments of an action
type Arguments map[string]string

// Keys returns the argument names in sorted order
func (a Arguments) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Int is a convenience constructor for integer-valued arguments
func Int(v int) string {
	return strconv.Itoa(v)
}

var stringType = reflect.TypeOf("")

// requestArgs returns the in arguments in the form the SOAP encoder takes:
// a pointer to a struct of string fields, named through "soap" tags.
// Fields follow the sorted argument names so requests are reproducible.
func requestArgs(args Arguments) any {
	keys := args.Keys()
	if len(keys) == 0 {
		return &struct{}{}
	}

	fields := make([]reflect.StructField, len(keys))
	for i, k := range keys {
		fields[i] = reflect.StructField{
			Name: "Arg" + strconv.Itoa(i),
			Type: stringType,
			Tag:  reflect.StructTag(`soap:"` + k + `"`),
		}
	}

	v := reflect.New(reflect.StructOf(fields))
	for i, k := range keys {
		v.Elem().Field(i).SetString(args[k])
	}
	return v.Interface()
}

// UnmarshalXML decodes an action response element into its out arguments
func (a *Arguments) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var resp struct {
		Args []struct {
			XMLName xml.Name
			Value   string `xml:",chardata"`
		} `xml:",any"`
	}
	if err := d.DecodeElement(&resp, &start); err != nil {
		return err
	}

	out := make(Arguments, len(resp.Args))
	for _, arg := range resp.Args {
		out[arg.XMLName.Local] = strings.TrimSpace(arg.Value)
	}
	*a = out
	return nil
}

// faultError converts a SOAP fault into an *ActionError
func faultError(f *soap.SOAPFaultError) *ActionError {
	upnp := f.Detail.UPnPError
	if upnp.Errorcode == 0 {
		return &ActionError{
			Type:    ErrTypeActionFailed,
			Message: strings.TrimSpace(f.FaultCode + " " + f.FaultString),
		}
	}
	return NewFaultError(upnp.Errorcode, strings.TrimSpace(upnp.ErrorDescription))
}
