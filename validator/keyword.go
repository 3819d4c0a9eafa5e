package validator

import "strings"

// Keyword identifies a schema keyword the validator understands.
// Checkers of one schema run in Keyword order.
type Keyword int

// Known keywords, in evaluation order.
const (
	KeywordRef Keyword = iota
	KeywordNullable
	KeywordType
	KeywordEnum
	KeywordConst
	KeywordMultipleOf
	KeywordMinimum
	KeywordMaximum
	KeywordExclusiveMinimum
	KeywordExclusiveMaximum
	KeywordMinLength
	KeywordMaxLength
	KeywordPattern
	KeywordFormat
	KeywordItems
	KeywordMinItems
	KeywordMaxItems
	KeywordUniqueItems
	KeywordContains
	KeywordRequired
	KeywordProperties
	KeywordPatternProperties
	KeywordAdditionalProperties
	KeywordPropertyNames
	KeywordMinProperties
	KeywordMaxProperties
	KeywordReadOnly
	KeywordWriteOnly
	KeywordDiscriminator
	KeywordAllOf
	KeywordAnyOf
	KeywordOneOf
	KeywordNot
	KeywordIf
	// KeywordExtension covers x-* keys, which only have custom checkers.
	KeywordExtension

	keywordCount
)

var keywordNames = [...]string{
	KeywordRef:                  "$ref",
	KeywordNullable:             "nullable",
	KeywordType:                 "type",
	KeywordEnum:                 "enum",
	KeywordConst:                "const",
	KeywordMultipleOf:           "multipleOf",
	KeywordMinimum:              "minimum",
	KeywordMaximum:              "maximum",
	KeywordExclusiveMinimum:     "exclusiveMinimum",
	KeywordExclusiveMaximum:     "exclusiveMaximum",
	KeywordMinLength:            "minLength",
	KeywordMaxLength:            "maxLength",
	KeywordPattern:              "pattern",
	KeywordFormat:               "format",
	KeywordItems:                "items",
	KeywordMinItems:             "minItems",
	KeywordMaxItems:             "maxItems",
	KeywordUniqueItems:          "uniqueItems",
	KeywordContains:             "contains",
	KeywordRequired:             "required",
	KeywordProperties:           "properties",
	KeywordPatternProperties:    "patternProperties",
	KeywordAdditionalProperties: "additionalProperties",
	KeywordPropertyNames:        "propertyNames",
	KeywordMinProperties:        "minProperties",
	KeywordMaxProperties:        "maxProperties",
	KeywordReadOnly:             "readOnly",
	KeywordWriteOnly:            "writeOnly",
	KeywordDiscriminator:        "discriminator",
	KeywordAllOf:                "allOf",
	KeywordAnyOf:                "anyOf",
	KeywordOneOf:                "oneOf",
	KeywordNot:                  "not",
	KeywordIf:                   "if",
	KeywordExtension:            "x-",
}

var keywordsByName = func() map[string]Keyword {
	m := make(map[string]Keyword, keywordCount)
	for k := KeywordRef; k < KeywordExtension; k++ {
		m[keywordNames[k]] = k
	}
	return m
}()

// String returns the keyword as written in a schema.
func (k Keyword) String() string {
	if k < 0 || k >= keywordCount {
		return "unknown"
	}
	return keywordNames[k]
}

// ParseKeyword maps a schema key to its Keyword. Keys starting with "x-" map
// to KeywordExtension; other unknown keys report false.
func ParseKeyword(name string) (Keyword, bool) {
	if k, ok := keywordsByName[name]; ok {
		return k, true
	}
	if strings.HasPrefix(name, "x-") {
		return KeywordExtension, true
	}
	return 0, false
}
