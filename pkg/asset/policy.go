package asset

// Compression level bounds shared by every policy. Codecs whose native range
// is narrower map this scale onto their own.
const (
	MinLevel = 1
	MaxLevel = 22
)

// ClampLevel forces a level into the [MinLevel, MaxLevel] range.
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Policy resolves a compression level for each asset category. The zero
// value is not useful; construct one with DefaultPolicy or ManualPolicy.
type Policy struct {
	levels map[Category]int
	manual bool
}

// DefaultPolicy returns the automatic per-category policy: scripts compress
// hardest since text yields the most, already-compressed audio gets a fast
// pass, and the rest sit in between.
func DefaultPolicy() Policy {
	return Policy{
		levels: map[Category]int{
			CategoryScript:  12,
			CategoryTexture: 5,
			CategoryAudio:   2,
			CategoryModel:   6,
			CategoryOther:   3,
		},
	}
}

// ManualPolicy returns a policy that resolves every category to the same
// level, clamped into range.
func ManualPolicy(level int) Policy {
	return Policy{
		levels: map[Category]int{},
		manual: true,
	}.withUniform(ClampLevel(level))
}

// CustomPolicy returns an automatic policy with the given per-category
// levels. Categories absent from overrides keep their defaults.
func CustomPolicy(overrides map[Category]int) Policy {
	p := DefaultPolicy()
	for category, level := range overrides {
		p.levels[category] = ClampLevel(level)
	}
	return p
}

func (p Policy) withUniform(level int) Policy {
	for _, category := range Categories() {
		p.levels[category] = level
	}
	return p
}

// Resolve returns the compression level for a category. Unknown categories
// fall back to the CategoryOther level.
func (p Policy) Resolve(category Category) int {
	if level, ok := p.levels[category]; ok {
		return ClampLevel(level)
	}
	return ClampLevel(p.levels[CategoryOther])
}

// Manual reports whether the policy applies one uniform level.
func (p Policy) Manual() bool {
	return p.manual
}

// Level returns the uniform level of a manual policy, or zero for an
// automatic one.
func (p Policy) Level() int {
	if !p.manual {
		return 0
	}
	return p.levels[CategoryOther]
}
