package validator

import (
	"encoding/json"
	"strconv"

	"github.com/erraggy/oaskit/internal/equalutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Stable item codes.
const (
	CodeRefNotFound          = 1000
	CodeType                 = 1001
	CodeNull                 = 1002
	CodeMinimum              = 1003
	CodeExclusiveMinimum     = 1004
	CodeMaximum              = 1005
	CodeExclusiveMaximum     = 1006
	CodeMultipleOf           = 1007
	CodeMinLength            = 1008
	CodeMaxLength            = 1009
	CodePattern              = 1010
	CodeFormat               = 1011
	CodeMinItems             = 1012
	CodeMaxItems             = 1013
	CodeUniqueItems          = 1014
	CodeContains             = 1015
	CodeRequired             = 1016
	CodeMinProperties        = 1017
	CodeMaxProperties        = 1018
	CodeAdditionalProperties = 1019
	CodePropertyNames        = 1020
	CodeEnum                 = 1021
	CodeConst                = 1022
	CodeAllOf                = 1023
	CodeAnyOf                = 1024
	CodeOneOfNone            = 1025
	CodeOneOfMany            = 1026
	CodeNot                  = 1027
	CodeIfThenElse           = 1028
	CodeDiscriminatorMissing = 1029
	CodeDiscriminatorUnknown = 1030
	CodeDiscriminatorType    = 1031
	CodeReadOnly             = 1032
	CodeWriteOnly            = 1033
)

// Message templates. The English text doubles as the catalog key, so a
// language without a translation falls back to it.
const (
	msgRefNotFound   = "reference %s cannot be resolved"
	msgType          = "expected type %s but got %s"
	msgFalseSchema   = "no value is allowed here"
	msgNull          = "value cannot be null"
	msgMinimum       = "value %s is less than minimum %s"
	msgMinimumR      = "value is less than minimum %s"
	msgExclMinimum   = "value %s must be greater than %s"
	msgExclMinimumR  = "value must be greater than %s"
	msgMaximum       = "value %s exceeds maximum %s"
	msgMaximumR      = "value exceeds maximum %s"
	msgExclMaximum   = "value %s must be less than %s"
	msgExclMaximumR  = "value must be less than %s"
	msgMultipleOf    = "value %s is not a multiple of %s"
	msgMultipleOfR   = "value is not a multiple of %s"
	msgMinLength     = "string length %d is less than minimum %d"
	msgMaxLength     = "string length %d exceeds maximum %d"
	msgPattern       = "string %s does not match pattern %q"
	msgPatternR      = "string does not match pattern %q"
	msgFormat        = "%s is not a valid %s"
	msgFormatR       = "value is not a valid %s"
	msgMinItems      = "array has %d items, minimum is %d"
	msgMaxItems      = "array has %d items, maximum is %d"
	msgUniqueItems   = "array items at index %d and %d are equal"
	msgContains      = "array does not contain an item matching the contains schema"
	msgRequired      = "required property %q is missing"
	msgMinProperties = "object has %d properties, minimum is %d"
	msgMaxProperties = "object has %d properties, maximum is %d"
	msgAdditional    = "additional property %q is not allowed"
	msgPropertyName  = "property name %q does not match the propertyNames schema"
	msgEnum          = "value %s is not one of the allowed values"
	msgEnumR         = "value is not one of the allowed values"
	msgConst         = "value %s does not equal the constant %s"
	msgConstR        = "value does not equal the constant"
	msgAllOf         = "value does not match allOf[%d]"
	msgAnyOf         = "value does not match any of the anyOf schemas"
	msgOneOfNone     = "value does not match any of the oneOf schemas"
	msgOneOfMany     = "value matches %d oneOf schemas, expected exactly 1"
	msgNot           = "value must not match the not schema"
	msgThen          = "value matches the if schema but not the then schema"
	msgElse          = "value does not match the if schema nor the else schema"
	msgDiscMissing   = "discriminator property %q is missing"
	msgDiscUnknown   = "discriminator value %q of property %q does not map to a schema"
	msgDiscUnknownR  = "discriminator property %q does not map to a schema"
	msgDiscType      = "discriminator property %q must be a string"
	msgReadOnly      = "property is read-only and must not be sent in a request"
	msgWriteOnly     = "property is write-only and must not be returned in a response"
)

var germanMessages = map[string]string{
	msgRefNotFound:   "Referenz %s kann nicht aufgelöst werden",
	msgType:          "Typ %s erwartet, aber %s erhalten",
	msgFalseSchema:   "an dieser Stelle ist kein Wert erlaubt",
	msgNull:          "Wert darf nicht null sein",
	msgMinimum:       "Wert %s ist kleiner als das Minimum %s",
	msgMinimumR:      "Wert ist kleiner als das Minimum %s",
	msgExclMinimum:   "Wert %s muss größer als %s sein",
	msgExclMinimumR:  "Wert muss größer als %s sein",
	msgMaximum:       "Wert %s überschreitet das Maximum %s",
	msgMaximumR:      "Wert überschreitet das Maximum %s",
	msgExclMaximum:   "Wert %s muss kleiner als %s sein",
	msgExclMaximumR:  "Wert muss kleiner als %s sein",
	msgMultipleOf:    "Wert %s ist kein Vielfaches von %s",
	msgMultipleOfR:   "Wert ist kein Vielfaches von %s",
	msgMinLength:     "Zeichenkettenlänge %d ist kleiner als das Minimum %d",
	msgMaxLength:     "Zeichenkettenlänge %d überschreitet das Maximum %d",
	msgPattern:       "Zeichenkette %s entspricht nicht dem Muster %q",
	msgPatternR:      "Zeichenkette entspricht nicht dem Muster %q",
	msgFormat:        "%s ist kein gültiges %s",
	msgFormatR:       "Wert ist kein gültiges %s",
	msgMinItems:      "Array hat %d Elemente, Minimum ist %d",
	msgMaxItems:      "Array hat %d Elemente, Maximum ist %d",
	msgUniqueItems:   "Array-Elemente an Index %d und %d sind gleich",
	msgContains:      "Array enthält kein Element, das dem contains-Schema entspricht",
	msgRequired:      "Pflichteigenschaft %q fehlt",
	msgMinProperties: "Objekt hat %d Eigenschaften, Minimum ist %d",
	msgMaxProperties: "Objekt hat %d Eigenschaften, Maximum ist %d",
	msgAdditional:    "zusätzliche Eigenschaft %q ist nicht erlaubt",
	msgPropertyName:  "Eigenschaftsname %q entspricht nicht dem propertyNames-Schema",
	msgEnum:          "Wert %s ist keiner der erlaubten Werte",
	msgEnumR:         "Wert ist keiner der erlaubten Werte",
	msgConst:         "Wert %s entspricht nicht der Konstante %s",
	msgConstR:        "Wert entspricht nicht der Konstante",
	msgAllOf:         "Wert entspricht nicht allOf[%d]",
	msgAnyOf:         "Wert entspricht keinem der anyOf-Schemas",
	msgOneOfNone:     "Wert entspricht keinem der oneOf-Schemas",
	msgOneOfMany:     "Wert entspricht %d oneOf-Schemas, erwartet genau 1",
	msgNot:           "Wert darf dem not-Schema nicht entsprechen",
	msgThen:          "Wert entspricht dem if-Schema, aber nicht dem then-Schema",
	msgElse:          "Wert entspricht weder dem if-Schema noch dem else-Schema",
	msgDiscMissing:   "Diskriminator-Eigenschaft %q fehlt",
	msgDiscUnknown:   "Diskriminator-Wert %q der Eigenschaft %q verweist auf kein Schema",
	msgDiscUnknownR:  "Diskriminator-Eigenschaft %q verweist auf kein Schema",
	msgDiscType:      "Diskriminator-Eigenschaft %q muss eine Zeichenkette sein",
	msgReadOnly:      "Eigenschaft ist schreibgeschützt und darf nicht in einer Anfrage gesendet werden",
	msgWriteOnly:     "Eigenschaft ist nur schreibbar und darf nicht in einer Antwort zurückgegeben werden",
}

var messages = func() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range germanMessages {
		if err := b.SetString(language.German, key, text); err != nil {
			panic(err)
		}
	}
	return b
}()

func newPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(messages))
}

// maxDescribeLen bounds how much of a value is quoted in a message.
const maxDescribeLen = 64

// describe renders a value for a message: strings quoted, numbers exact,
// everything else as compact JSON.
func describe(v any) string {
	if s, ok := v.(string); ok {
		return truncate(strconv.Quote(s))
	}
	if d, ok := equalutil.ToDecimal(v); ok {
		return d.String()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "<unprintable>"
	}
	return truncate(string(data))
}

func truncate(s string) string {
	if len(s) <= maxDescribeLen {
		return s
	}
	return s[:maxDescribeLen-3] + "..."
}
