package model

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// Options selects the optional comparison passes.
type Options struct {
	// Normalize reorders wires and holes of both models before matching.
	Normalize bool
	// CheckGeomEquality compares the entity counts of each kind.
	CheckGeomEquality bool
	// CheckAttribEquality compares attribute names and data types.
	CheckAttribEquality bool
}

// DefaultOptions enables every pass.
func DefaultOptions() Options {
	return Options{Normalize: true, CheckGeomEquality: true, CheckAttribEquality: true}
}

// Comment is one line of feedback with optional detail lines.
type Comment struct {
	Text    string   `json:"text"`
	Details []string `json:"details,omitempty"`
}

// Result is the outcome of a comparison. Mismatches are reported as
// comments and score deductions, never as errors.
type Result struct {
	Percent  int       `json:"percent"`
	Score    int       `json:"score"`
	Total    int       `json:"total"`
	Comments []Comment `json:"comments"`
}

// Match reports whether the candidate scored every point.
func (r Result) Match() bool { return r.Score == r.Total }

// String renders the result as an indented plain text report.
func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Percentage: %d%%\n", r.Percent)
	fmt.Fprintf(&b, "Score: %d/%d\n", r.Score, r.Total)
	for _, c := range r.Comments {
		fmt.Fprintf(&b, "- %s\n", c.Text)
		for _, d := range c.Details {
			fmt.Fprintf(&b, "  - %s\n", d)
		}
	}
	return b.String()
}

func (r *Result) add(text string, details ...string) {
	r.Comments = append(r.Comments, Comment{Text: text, Details: details})
}

// comIdx maps entity indices of one model to common indices, per object
// kind.
type comIdx map[types.EntType]map[int]int

func newComIdx() comIdx {
	out := make(comIdx, len(types.Objects))
	for _, k := range types.Objects {
		out[k] = make(map[int]int)
	}
	return out
}

var objNames = map[types.EntType]string{
	types.Point: "point",
	types.Pline: "polyline",
	types.Pgon:  "polygon",
}

// Compare scores how closely cand matches ref. Both models are cloned
// first; neither is modified.
func Compare(ref, cand *Model, opts Options) Result {
	ref, cand = ref.Clone(), cand.Clone()
	var r Result

	if opts.CheckGeomEquality {
		compareCounts(ref, cand, &r)
	}
	if opts.CheckAttribEquality {
		score, total, comments := ref.attribs.Compare(cand.attribs)
		r.Score += score
		r.Total += total
		r.add("Comparing attribute names and types.", comments...)
	}
	if opts.Normalize {
		pad := newPadding(ref).widen(newPadding(cand))
		if err := ref.normalize(pad); err != nil {
			ref.log.Warn("normalize reference", "error", err)
		}
		cpad := newPadding(cand)
		cpad.width = pad.width
		if err := cand.normalize(cpad); err != nil {
			ref.log.Warn("normalize candidate", "error", err)
		}
	}
	refIdx, candIdx := compareObjs(ref, cand, &r)
	checkForErrors(ref, cand, &r, refIdx, candIdx)
	compareColls(ref, cand, &r, refIdx, candIdx)
	compareModelAttribs(ref, cand, &r)

	if r.Score == r.Total {
		r.Comments = []Comment{{Text: "RESULT: The two models match."}}
	} else {
		r.add("RESULT: The two models do not match.")
	}
	r.Percent = 100
	if r.Total > 0 {
		r.Percent = int(roundHalfUp(float64(r.Score) / float64(r.Total) * 100))
	}
	r.Percent = max(r.Percent, 0)
	ref.log.LogCompare(context.Background(), r.Score, r.Total, r.Percent)
	return r
}

func compareCounts(ref, cand *Model, r *Result) {
	var details []string
	for _, k := range types.TopLevel {
		r.Total++
		want, got := ref.geom.NumEnts(k), cand.geom.NumEnts(k)
		if want == got {
			r.Score++
			continue
		}
		details = append(details, fmt.Sprintf("Mismatch: the model has %d %s but it should have %d.", got, k.Plural(), want))
	}
	if len(details) == 0 {
		details = append(details, "The number of positions, objects and collections all match.")
	}
	r.add("Comparing the number of entities in the two models.", details...)
}

// fprintAttribs returns the attributes that take part in object
// fingerprints: coordinates always, vertex colours and polygon materials
// when the reference has them.
func fprintAttribs(ref *Model) map[types.EntType][]string {
	names := map[types.EntType][]string{types.Posi: {"xyz"}}
	if ref.attribs.HasAttrib(types.Vert, "rgb") {
		names[types.Vert] = []string{"rgb"}
	}
	if ref.attribs.HasAttrib(types.Pgon, MaterialAttrib) {
		names[types.Pgon] = []string{MaterialAttrib}
	}
	return names
}

func compareObjs(ref, cand *Model, r *Result) (comIdx, comIdx) {
	names := fprintAttribs(ref)
	refIdx, candIdx := newComIdx(), newComIdx()
	var details []string
	for _, k := range types.Objects {
		refFps, refEnts := ref.entsFprint(k, names)
		candFps, candEnts := cand.entsFprint(k, names)
		missing := 0
		for n, fp := range refFps {
			r.Total++
			refIdx[k][refEnts[n]] = n
			found := slices.Index(candFps, fp)
			if found < 0 {
				missing++
				continue
			}
			candIdx[k][candEnts[found]] = n
			r.Score++
		}
		if len(refFps) == 0 {
			continue
		}
		if missing > 0 {
			details = append(details, fmt.Sprintf("Mismatch: %d %s entities could not be found.", missing, k.Plural()))
		} else {
			details = append(details, fmt.Sprintf("All %s entities have been found.", k.Plural()))
		}
	}
	r.add("Comparing objects in the two models.", details...)
	return refIdx, candIdx
}

func compareColls(ref, cand *Model, r *Result, refIdx, candIdx comIdx) {
	refFps, candFps := ref.collFprints(refIdx), cand.collFprints(candIdx)
	var details []string
	missing := 0
	for _, fp := range refFps {
		r.Total++
		if slices.Contains(candFps, fp) {
			r.Score++
		} else {
			missing++
		}
	}
	if missing > 0 {
		details = append(details, fmt.Sprintf("Mismatch: %d collections could not be found.", missing))
	}
	if r.Score == r.Total {
		details = append(details, "Match: The model contains all required entities and collections.")
	}
	r.add("Comparing collections in the two models.", details...)
}

// materialNames returns the distinct material names used by the
// polygons of m, in polygon order.
func materialNames(m *Model) []string {
	var out []string
	for _, pg := range m.geom.Ents(types.Pgon) {
		v, _ := m.attribs.Val(types.Pgon, pg, MaterialAttrib)
		if s, ok := v.(string); ok && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func compareModelAttribs(ref, cand *Model, r *Result) {
	var details []string
	for _, name := range materialNames(ref) {
		r.Total++
		want, _ := ref.attribs.ModelVal(name)
		got, ok := cand.attribs.ModelVal(name)
		switch {
		case !ok:
			details = append(details, fmt.Sprintf("Mismatch: model attribute %q could not be found.", name))
		case valFprint(want) != valFprint(got):
			details = append(details, fmt.Sprintf("Mismatch: the value for model attribute %q is incorrect.", name))
		default:
			r.Score++
		}
	}
	if r.Score == r.Total {
		details = append(details, "Match: The model contains all required model attributes.")
	}
	r.add("Comparing model attributes in the two models.", details...)
}

// vecCount counts how many unmatched objects a translation vector would
// fix, in first-seen order.
type vecCount struct {
	keys   []string
	counts map[string]int
}

func (v *vecCount) inc(key string) {
	if v.counts == nil {
		v.counts = make(map[string]int)
	}
	if _, ok := v.counts[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.counts[key]++
}

// checkForErrors looks for unmatched objects that would match after a
// single translation, or for polygons after a translation and a winding
// flip. It is a greedy heuristic: each unmatched reference object takes
// the nearest fitting candidate object, and no global assignment is
// solved.
func checkForErrors(ref, cand *Model, r *Result, refIdx, candIdx comIdx) {
	var hints []string
	for _, k := range types.Objects {
		matched := make(map[int]bool)
		var candMia []int
		for _, i := range cand.geom.Ents(k) {
			if c, ok := candIdx[k][i]; ok {
				matched[c] = true
			} else {
				candMia = append(candMia, i)
			}
		}
		var refMia []int
		for _, i := range ref.geom.Ents(k) {
			if !matched[refIdx[k][i]] {
				refMia = append(refMia, i)
			}
		}
		if len(refMia) == 0 || len(candMia) < len(refMia) {
			continue
		}

		var moved, flipped vecCount
		for _, i := range refMia {
			vec, flip, ok := nearestFit(ref, cand, k, i, candMia)
			if !ok {
				continue
			}
			key := vecString(vec)
			if flip {
				flipped.inc(key)
			} else {
				moved.inc(key)
			}
		}
		for _, key := range flipped.keys {
			hints = append(hints, flipHint(flipped.counts[key], key))
		}
		for _, key := range moved.keys {
			hints = append(hints, moveHint(k, moved.counts[key], key))
		}
	}
	if len(hints) > 0 {
		r.add("An analysis of the geometry suggests there might be some objects that are translated.", hints...)
	}
}

// nearestFit finds the candidate object that matches reference object i
// after the smallest translation, measured in L1 distance.
func nearestFit(ref, cand *Model, k types.EntType, i int, candMia []int) ([3]float64, bool, bool) {
	refPosis := ref.geom.NavAnyToPosi(k, i)
	if len(refPosis) == 0 {
		return [3]float64{}, false, false
	}
	first := ref.attribs.PosiCoords(refPosis[0])
	best := math.Inf(1)
	var vec [3]float64
	var flip, found bool
	for _, j := range candMia {
		candPosis := cand.geom.NavAnyToPosi(k, j)
		if len(candPosis) != len(refPosis) {
			continue
		}
		other := cand.attribs.PosiCoords(candPosis[0])
		trans := [3]float64{other[0] - first[0], other[1] - first[1], other[2] - first[2]}
		dist := math.Abs(trans[0]) + math.Abs(trans[1]) + math.Abs(trans[2])
		refFp := ref.xyzFprint(k, i, trans)
		candFp := cand.xyzFprint(k, j, [3]float64{})
		isFlip := false
		if refFp != candFp {
			if k != types.Pgon || flipFprint(refFp) != candFp {
				continue
			}
			isFlip = true
		}
		if dist < best {
			best, vec, flip, found = dist, trans, isFlip, true
		}
	}
	return vec, flip, found
}

// flipFprint reverses a loop fingerprint while keeping its first
// position.
func flipFprint(fp string) string {
	parts := strings.Split(fp, "|")
	parts = append(parts[1:], parts[0])
	slices.Reverse(parts)
	return strings.Join(parts, "|")
}

func vecString(v [3]float64) string {
	parts := make([]string, 3)
	for i, c := range v {
		parts[i] = formatNum(roundHalfUp(c*vecPrecision) / vecPrecision)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

const zeroVec = "[0,0,0]"

func flipHint(count int, vec string) string {
	var parts []string
	if count > 1 {
		parts = append(parts,
			"It looks like there are certain polygon objects that have the correct shape but that are reversed.",
			fmt.Sprintf("%d polygons have been found that seem like they should be reversed.", count))
		if vec != zeroVec {
			parts = append(parts,
				"They also seem to be in the wrong location.",
				"It seems like they should be reversed and translated by the following vector:",
				vec+".")
		}
	} else {
		parts = append(parts,
			"It looks like there is a polygon object that has the correct shape but that is reversed.")
		if vec != zeroVec {
			parts = append(parts,
				"It also seems to be in the wrong location.",
				"It seems like it should be reversed and translated by the following vector:",
				vec+".")
		}
	}
	return strings.Join(parts, " ")
}

func moveHint(k types.EntType, count int, vec string) string {
	if count > 1 {
		return fmt.Sprintf("It looks like there are certain %s objects that have the correct shape but that are in the wrong location. "+
			"%d %s objects have been found that seem like they should be translated by the following vector: %s.",
			objNames[k], count, objNames[k], vec)
	}
	return fmt.Sprintf("It looks like there is a %s object that has the correct shape but that is in the wrong location. "+
		"It seems like the object should be translated by the following vector: %s.", objNames[k], vec)
}
