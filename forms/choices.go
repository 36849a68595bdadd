package forms

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrUnknownPreset = errors.New("unknown option preset")

// Choice is an option of a select or a set. A choice with a non-nil Group is an
// optgroup labeled Label; its Key is unused.
type Choice struct {
	Key   string
	Label string
	Group Choices
}

// Choices is an ordered list of options.
type Choices []Choice

// Options makes choices whose labels are the keys themselves.
func Options(keys ...string) Choices {
	result := make(Choices, len(keys))
	for i, k := range keys {
		result[i] = Choice{Key: k, Label: k}
	}
	return result
}

// Pairs makes choices from alternating keys and labels.
func Pairs(kv ...string) Choices {
	if len(kv)%2 != 0 {
		panic("forms.Pairs: odd number of arguments")
	}
	result := make(Choices, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		result = append(result, Choice{Key: kv[i], Label: kv[i+1]})
	}
	return result
}

func Optgroup(label string, choices Choices) Choice {
	if choices == nil {
		choices = Choices{}
	}
	return Choice{Label: label, Group: choices}
}

func (c Choice) IsGroup() bool { return c.Group != nil }

// Flatten returns the options with optgroups expanded in place.
func (cc Choices) Flatten() Choices {
	var result Choices
	for _, c := range cc {
		if c.IsGroup() {
			result = append(result, c.Group.Flatten()...)
		} else {
			result = append(result, c)
		}
	}
	return result
}

func (cc Choices) Keys() []string {
	flat := cc.Flatten()
	keys := make([]string, len(flat))
	for i, c := range flat {
		keys[i] = c.Key
	}
	return keys
}

func (cc Choices) Len() int {
	return len(cc.Flatten())
}

// now is replaced in tests to pin the current year.
var now = time.Now

var monthsShort = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Preset returns a named option list:
//
//	MONTHS_SHORT, MONTHS_LONG   01..12 with month names
//	DAYS_OF_MONTH               01..31
//	HOURS_12, HOURS_24          01..12, 00..23
//	MINUTES, MINUTES_5/10/15    00..59 in steps
//	YEAR                        this year to this year + 10
//	YEAR_s                      this year to s
//	YEAR_a_b                    a to b, descending when a > b
func Preset(name string) (Choices, error) {
	switch name {
	case "MONTHS_SHORT":
		return months(func(i int) string { return monthsShort[i-1] }), nil
	case "MONTHS_LONG":
		return months(func(i int) string { return time.Month(i).String() }), nil
	case "DAYS_OF_MONTH":
		return numbered(1, 31, 1), nil
	case "HOURS_12":
		return numbered(1, 12, 1), nil
	case "HOURS_24":
		return numbered(0, 23, 1), nil
	case "MINUTES":
		return numbered(0, 59, 1), nil
	case "MINUTES_5":
		return numbered(0, 55, 5), nil
	case "MINUTES_10":
		return numbered(0, 50, 10), nil
	case "MINUTES_15":
		return numbered(0, 45, 15), nil
	}
	if name == "YEAR" || strings.HasPrefix(name, "YEAR_") {
		return years(name)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// IsPreset reports whether name looks like a preset rather than a literal value.
func IsPreset(name string) bool {
	_, err := Preset(name)
	return err == nil
}

func months(label func(i int) string) Choices {
	result := make(Choices, 0, 12)
	for i := 1; i <= 12; i++ {
		result = append(result, Choice{Key: fmt.Sprintf("%02d", i), Label: label(i)})
	}
	return result
}

func numbered(from, to, step int) Choices {
	var result Choices
	for i := from; i <= to; i += step {
		s := fmt.Sprintf("%02d", i)
		result = append(result, Choice{Key: s, Label: s})
	}
	return result
}

func years(name string) (Choices, error) {
	parts := strings.Split(name, "_")
	current := now().Year()
	start, end := current, current+10
	var err error
	switch len(parts) {
	case 1:
	case 2:
		end, err = strconv.Atoi(parts[1])
	case 3:
		start, err = strconv.Atoi(parts[1])
		if err == nil {
			end, err = strconv.Atoi(parts[2])
		}
	default:
		err = ErrUnknownPreset
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}

	step := 1
	if start > end {
		step = -1
	}
	result := make(Choices, 0, (end-start)*step+1)
	for y := start; ; y += step {
		s := strconv.Itoa(y)
		result = append(result, Choice{Key: s, Label: s})
		if y == end {
			break
		}
	}
	return result, nil
}

type xmlOptions struct {
	Sets []struct {
		Name    string `xml:"name,attr"`
		Options []struct {
			Value string `xml:"value,attr"`
			Label string `xml:",chardata"`
		} `xml:"opt"`
	} `xml:"set"`
}

// LoadOptionsXML reads a named option set from a file shaped like
//
//	<options>
//	  <set name="countries">
//	    <opt value="US">United States</opt>
//	  </set>
//	</options>
func LoadOptionsXML(path, set string) (Choices, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc xmlOptions
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, s := range doc.Sets {
		if s.Name != set {
			continue
		}
		result := make(Choices, 0, len(s.Options))
		for _, o := range s.Options {
			label := strings.TrimSpace(o.Label)
			if o.Value == "" {
				o.Value = label
			}
			result = append(result, Choice{Key: o.Value, Label: label})
		}
		return result, nil
	}
	return nil, fmt.Errorf("%s: %w: %q", path, ErrUnknownPreset, set)
}
