// Package options provides shared utilities for option validation across packages.
package options

import "fmt"

// ValidateSingleInputSource ensures exactly one input source is specified.
// names labels the sources in the error message and must be as long as
// sources. Returns an error naming the sources and how many were set.
func ValidateSingleInputSource(names []string, sources ...bool) error {
	sourceCount := 0
	for _, hasSource := range sources {
		if hasSource {
			sourceCount++
		}
	}
	if sourceCount == 1 {
		return nil
	}

	var list string
	switch len(names) {
	case 0:
		list = "input"
	case 1:
		list = names[0]
	case 2:
		list = names[0] + " or " + names[1]
	default:
		for i, n := range names {
			switch {
			case i == len(names)-1:
				list += ", or " + n
			case i > 0:
				list += ", " + n
			default:
				list = n
			}
		}
	}
	return fmt.Errorf("exactly one of %s must be provided (got %d)", list, sourceCount)
}
