package console

import (
	"fmt"
	"strconv"

	"github.com/simbridge/simbridge-go/pkg/property"
)

func formatValue(p property.Property) string {
	d := p.Descriptor()
	var s string
	switch v := p.Value().(type) {
	case float64:
		if d.Decimals >= 0 {
			s = strconv.FormatFloat(v, 'f', d.Decimals, 64)
		} else {
			s = strconv.FormatFloat(v, 'g', -1, 64)
		}
	case string:
		s = strconv.Quote(v)
	default:
		s = fmt.Sprint(v)
	}
	if d.Unit != "" && d.Unit != "bool" {
		s += " " + d.Unit
	}
	return s
}

// parseSimValue reads true/false as bool and numbers as float64. Anything
// else is a string.
func parseSimValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
