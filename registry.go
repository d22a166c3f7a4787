package xlist

import "github.com/puzpuzpuz/xsync/v3"

// Counted is the registry's view of a list: bookkeeping only, no
// element access.
type Counted interface {
	Stats() Stats
}

// Registry tracks named lists so operators can watch them as a group,
// typically through the prometheus Collector.
type Registry struct {
	lists *xsync.MapOf[string, Counted]
}

func NewRegistry() *Registry {
	return &Registry{lists: xsync.NewMapOf[string, Counted]()}
}

// DefaultRegistry receives every list created with WithName.
var DefaultRegistry = NewRegistry()

func (r *Registry) add(name string, c Counted) {
	r.lists.Store(name, c)
}

func (r *Registry) remove(name string) {
	r.lists.Delete(name)
}

// Lookup returns the current stats of a registered list.
func (r *Registry) Lookup(name string) (Stats, bool) {
	c, ok := r.lists.Load(name)
	if !ok {
		return Stats{}, false
	}
	return c.Stats(), true
}

// Range visits every registered list until f returns false.
func (r *Registry) Range(f func(name string, s Stats) bool) {
	r.lists.Range(func(name string, c Counted) bool {
		return f(name, c.Stats())
	})
}

func (r *Registry) Len() int {
	return r.lists.Size()
}
