package attribs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// compareKinds is the order in which attribute tables are compared.
var compareKinds = []types.EntType{
	types.Posi, types.Vert, types.Edge, types.Wire, types.Face,
	types.Point, types.Pline, types.Pgon, types.Coll, types.Mod,
}

// IsBuiltIn reports whether an attribute name is reserved by the kernel
// and excluded from scoring.
func IsBuiltIn(name string) bool {
	return name == XYZ || name == "rgb" || strings.HasPrefix(name, "_")
}

// Compare checks that every attribute of a (the reference) exists in other
// with the same data type. Each non built-in reference attribute adds one
// to total and, when matched, one to score. Every kind where other carries
// extra attributes deducts one from score.
func (a *Attribs) Compare(other *Attribs) (score, total int, comments []string) {
	for _, k := range compareKinds {
		kind := k.Plural()
		names, otherNames := a.Names(k), other.Names(k)
		for _, name := range names {
			builtIn := IsBuiltIn(name)
			if !builtIn {
				total++
			}
			if !slices.Contains(otherNames, name) {
				comments = append(comments, fmt.Sprintf("The %q %s attribute is missing.", name, kind))
				continue
			}
			want, got := a.dataType(k, name), other.dataType(k, name)
			if want != got {
				comments = append(comments, fmt.Sprintf(
					"The %q %s attribute datatype is wrong. It is %q but it should be %q.", name, kind, got, want))
				continue
			}
			if !builtIn {
				score++
			}
		}
		switch {
		case len(otherNames) > len(names):
			var extra []string
			for _, name := range otherNames {
				if !slices.Contains(names, name) {
					extra = append(extra, name)
				}
			}
			comments = append(comments, fmt.Sprintf(
				"There are additional %s attributes. The following attributes are not required: [%s].",
				kind, strings.Join(extra, ",")))
			score--
		case len(otherNames) < len(names):
			comments = append(comments, fmt.Sprintf("Mismatch: Model has too few %s attributes.", kind))
		}
	}
	if len(comments) == 0 {
		comments = append(comments, "Attributes all match, both name and data type.")
	}
	return score, total, comments
}

// dataType returns the type of a column, or of a model attribute's value.
func (a *Attribs) dataType(k types.EntType, name string) types.DataType {
	if k == types.Mod {
		_, dt, _ := types.NormalizeValue(a.model[name])
		return dt
	}
	dt, _ := a.DataType(k, name)
	return dt
}
