package domain

// DomainInfo describes a subject-matter domain.
type DomainInfo struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Registry is the closed set of domains the engine accepts. It is built once at
// startup and passed to the components that need it.
type Registry struct {
	order []DomainInfo
	byID  map[string]DomainInfo
}

func NewRegistry(domains ...DomainInfo) *Registry {
	r := &Registry{byID: make(map[string]DomainInfo, len(domains))}
	for _, d := range domains {
		if _, dup := r.byID[d.ID]; dup || d.ID == "" {
			continue
		}
		r.byID[d.ID] = d
		r.order = append(r.order, d)
	}
	return r
}

// Has reports whether id is a registered domain.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// List returns the registered domains in registration order.
func (r *Registry) List() []DomainInfo {
	out := make([]DomainInfo, len(r.order))
	copy(out, r.order)
	return out
}

// DefaultDomains is the domain list served when no override is configured.
func DefaultDomains() []DomainInfo {
	return []DomainInfo{
		{ID: "mathematics", Name: "Mathematics", Description: "Arithmetic, algebra, geometry and calculus"},
		{ID: "physics", Name: "Physics", Description: "Mechanics, energy, waves and electricity"},
		{ID: "chemistry", Name: "Chemistry", Description: "Atoms, bonding, reactions and stoichiometry"},
		{ID: "biology", Name: "Biology", Description: "Cells, genetics, evolution and ecology"},
		{ID: "computer-science", Name: "Computer Science", Description: "Programming, algorithms and data structures"},
		{ID: "english", Name: "English", Description: "Grammar, vocabulary and reading comprehension"},
		{ID: "history", Name: "History", Description: "World and modern history"},
		{ID: "economics", Name: "Economics", Description: "Micro and macroeconomics fundamentals"},
	}
}
