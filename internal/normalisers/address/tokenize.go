package address

import (
	"regexp"
	"strings"
	"unicode"
)

// Label names an address component.
type Label string

// Component labels, named after the USPS Publication 28 elements.
const (
	AddressNumber             Label = "AddressNumber"
	StreetNamePreDirectional  Label = "StreetNamePreDirectional"
	StreetName                Label = "StreetName"
	StreetNamePostType        Label = "StreetNamePostType"
	StreetNamePostDirectional Label = "StreetNamePostDirectional"
	OccupancyType             Label = "OccupancyType"
	OccupancyIdentifier       Label = "OccupancyIdentifier"
	USPSBoxType               Label = "USPSBoxType"
	USPSBoxID                 Label = "USPSBoxID"
	PlaceName                 Label = "PlaceName"
	StateName                 Label = "StateName"
	ZipCode                   Label = "ZipCode"
)

// Token is one labelled word of an address.
type Token struct {
	Text  string
	Label Label
}

var (
	zipPattern  = regexp.MustCompile(`^\d{5}(-?\d{4})?$`)
	zip4Pattern = regexp.MustCompile(`^\d{4}$`)
	zip5Pattern = regexp.MustCompile(`^\d{5}$`)
)

type word struct {
	text    string
	segment int
}

// Tokenize labels each word of a free-text US address.
//
// The zip code and state are read from the end, the box or house number,
// street and unit from the start. Whatever lies between is the place name.
func Tokenize(text string) []Token {
	words := splitWords(text)
	labels := make([]Label, len(words))

	end := len(words)
	switch {
	case end >= 2 && zip4Pattern.MatchString(words[end-1].text) && zip5Pattern.MatchString(words[end-2].text):
		labels[end-1], labels[end-2] = ZipCode, ZipCode
		end -= 2
	case end >= 1 && zipPattern.MatchString(words[end-1].text):
		labels[end-1] = ZipCode
		end--
	}

	for size := 3; size >= 1; size-- {
		if end-size < 0 {
			continue
		}
		if _, ok := states[joinWords(words[end-size:end])]; ok {
			for i := end - size; i < end; i++ {
				labels[i] = StateName
			}
			end -= size
			break
		}
	}

	i := labelStreet(words, labels, end)

	if i < end {
		if _, ok := occupancyTypes[words[i].text]; ok {
			labels[i] = OccupancyType
			i++
			if i < end {
				labels[i] = OccupancyIdentifier
				i++
			}
		}
	}

	for ; i < end; i++ {
		labels[i] = PlaceName
	}

	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Token{Text: w.text, Label: labels[i]}
	}
	return tokens
}

// labelStreet labels the box or street line and returns the index of the
// first word after it.
func labelStreet(words []word, labels []Label, end int) int {
	i := 0
	if i >= end {
		return i
	}

	if box := boxEnd(words, end); box > 0 {
		for j := 0; j < box; j++ {
			labels[j] = USPSBoxType
		}
		if box < end {
			labels[box] = USPSBoxID
			return box + 1
		}
		return box
	}

	if !startsWithDigit(words[i].text) {
		return i
	}
	labels[i] = AddressNumber
	i++

	if i+1 < end {
		if _, ok := directionals[words[i].text]; ok && !isSuffix(words[i+1].text) {
			labels[i] = StreetNamePreDirectional
			i++
		}
	}
	if i >= end {
		return i
	}

	limit := streetLimit(words, i, end)
	suffix := -1
	for k := i + 1; k < limit; k++ {
		if isSuffix(words[k].text) {
			suffix = k
			for suffix+1 < limit && isSuffix(words[suffix+1].text) {
				suffix++
			}
			break
		}
	}

	switch {
	case suffix > 0:
		for ; i < suffix; i++ {
			labels[i] = StreetName
		}
		labels[suffix] = StreetNamePostType
		i = suffix + 1
	case limit < end && words[limit-1].segment != words[limit].segment:
		for ; i < limit; i++ {
			labels[i] = StreetName
		}
	default:
		labels[i] = StreetName
		i++
	}

	if i < end && len(words[i].text) <= 2 {
		if _, ok := directionals[words[i].text]; ok {
			labels[i] = StreetNamePostDirectional
			i++
		}
	}
	return i
}

// streetLimit is the index where the street name must end: the first unit
// designator or the end of the comma separated segment.
func streetLimit(words []word, start, end int) int {
	for k := start; k < end; k++ {
		if k > start && words[k].segment != words[start].segment {
			return k
		}
		if _, ok := occupancyTypes[words[k].text]; ok && k > start {
			return k
		}
	}
	return end
}

// boxEnd returns the index after the box designator words, or 0.
func boxEnd(words []word, end int) int {
	for j := 0; j < end && j < 4; j++ {
		if !boxWords[words[j].text] {
			return 0
		}
		if words[j].text == "BOX" {
			return j + 1
		}
	}
	return 0
}

func splitWords(text string) []word {
	text = strings.ToUpper(text)
	text = strings.ReplaceAll(text, ".", "")
	text = strings.ReplaceAll(text, "#", " # ")

	var words []word
	for segment, part := range strings.Split(text, ",") {
		for _, f := range strings.Fields(part) {
			words = append(words, word{text: f, segment: segment})
		}
	}
	return words
}

func joinWords(words []word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.text
	}
	return strings.Join(parts, " ")
}

func isSuffix(s string) bool {
	_, ok := streetSuffixes[s]
	return ok
}

func startsWithDigit(s string) bool {
	for _, r := range s {
		return unicode.IsDigit(r)
	}
	return false
}
