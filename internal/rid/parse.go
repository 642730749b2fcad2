package rid

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/xyproto/s4pack/internal/s4err"
)

// hex group patterns, matching the Python source's fixed-width {,8}/{,16}
// quantifiers: up to 8 hex digits for group/type, up to 16 for instance.
const (
	hexGroup    = `[0-9A-Fa-f]{1,8}`
	hexInstance = `[0-9A-Fa-f]{1,16}`
)

var (
	colonRE = regexp.MustCompile(`^(?P<group>` + hexGroup + `):(?P<instance>` + hexInstance + `):(?P<type>` + hexGroup + `)$`)
	maxisRE = regexp.MustCompile(`^(?P<group>` + hexGroup + `)!(?P<instance>` + hexInstance + `)\.(?P<type>` + hexGroup + `)$`)
	s4peRE  = regexp.MustCompile(`^S4_(?P<type>` + hexGroup + `)_(?P<group>` + hexGroup + `)_(?P<instance>` + hexInstance + `)(?:%%.*)?$`)
)

type namedMatcher struct {
	re *regexp.Regexp
}

var parsers = []namedMatcher{{colonRE}, {maxisRE}, {s4peRE}}

// Parse auto-detects which of the three text forms s matches (colon,
// maxis, s4pe, the s4pe form tolerating a trailing "%%..." suffix) and
// returns the RID it encodes. It is surjective over the three forms and
// injective within each form.
func Parse(s string) (RID, error) {
	for _, p := range parsers {
		m := p.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		names := p.re.SubexpNames()
		var groupStr, instanceStr, typeStr string
		for i, name := range names {
			switch name {
			case "group":
				groupStr = m[i]
			case "instance":
				instanceStr = m[i]
			case "type":
				typeStr = m[i]
			}
		}
		group, err := strconv.ParseUint(groupStr, 16, 32)
		if err != nil {
			return RID{}, fmt.Errorf("%w: group %q: %v", s4err.ErrInvalidRID, groupStr, err)
		}
		instance, err := strconv.ParseUint(instanceStr, 16, 64)
		if err != nil {
			return RID{}, fmt.Errorf("%w: instance %q: %v", s4err.ErrInvalidRID, instanceStr, err)
		}
		typ, err := strconv.ParseUint(typeStr, 16, 32)
		if err != nil {
			return RID{}, fmt.Errorf("%w: type %q: %v", s4err.ErrInvalidRID, typeStr, err)
		}
		return RID{Group: uint32(group), Instance: instance, Type: uint32(typ)}, nil
	}
	return RID{}, fmt.Errorf("%w: %q matches none of colon/maxis/s4pe", s4err.ErrInvalidRID, s)
}
