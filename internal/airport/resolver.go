package airport

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 512

// resolution is a memoized Resolve outcome. Misses are cached too.
type resolution struct {
	code string
	ok   bool
}

// Resolver maps free-text arrival names from the timetable pages to airport codes.
//
// Matching is exact first, then the first name-table entry (in table order) that is a
// substring of the raw name or contains it. The table order is the tie-break; this is
// an approximation and can pick the wrong airport when one short name is contained in
// another airport's display variant.
type Resolver struct {
	reg   *Registry
	names []NameEntry
	cache *lru.Cache[string, resolution]
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	cacheSize int
}

// WithCacheSize sets the number of memoized names. Zero or less disables memoization.
func WithCacheSize(n int) ResolverOption {
	return func(o *resolverOptions) { o.cacheSize = n }
}

// NewResolver creates a Resolver over reg's name table.
func NewResolver(reg *Registry, opts ...ResolverOption) *Resolver {
	o := resolverOptions{cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Resolver{reg: reg, names: reg.Names()}
	if o.cacheSize > 0 {
		// lru.New only fails for non-positive sizes.
		r.cache, _ = lru.New[string, resolution](o.cacheSize)
	}
	return r
}

// Resolve returns the airport code for a raw display name.
// ok is false when neither an exact nor a substring match exists, or the name is blank.
func (r *Resolver) Resolve(raw string) (code string, ok bool) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", false
	}
	if r.cache != nil {
		if hit, found := r.cache.Get(name); found {
			return hit.code, hit.ok
		}
	}

	res := r.resolve(name)
	if r.cache != nil {
		r.cache.Add(name, res)
	}
	return res.code, res.ok
}

func (r *Resolver) resolve(name string) resolution {
	if code, ok := r.reg.LookupByFullName(name); ok {
		return resolution{code: code, ok: true}
	}
	for _, e := range r.names {
		if strings.Contains(name, e.Name) || strings.Contains(e.Name, name) {
			return resolution{code: e.Code, ok: true}
		}
	}
	return resolution{}
}

// Canonicalize resolves raw and returns the Registry's short name for the result,
// so inconsistent page renderings collapse into one display label.
func (r *Resolver) Canonicalize(raw string) (code, shortName string, ok bool) {
	code, ok = r.Resolve(raw)
	if !ok {
		return "", "", false
	}
	ref, found := r.reg.LookupByCode(code)
	if !found {
		return "", "", false
	}
	return code, ref.ShortName, true
}
