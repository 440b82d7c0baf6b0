package models

// Source is a repository taking part in a reconciliation run
type Source struct {
	// Name shown in progress output (e.g., "partner resources")
	Name string
	// Path to the local clone
	Path string
	// Owner and Repo on the hosting service, used in remote mode
	Owner string
	Repo  string
	// DefaultSourceBranch replaces the run's source branch when the run uses
	// the global default (e.g., "worker/merged" instead of "develop")
	DefaultSourceBranch string
}

// NewSource creates a Source for a local clone
func NewSource(name, path string) Source {
	return Source{
		Name: name,
		Path: path,
	}
}

// WithRemote sets the hosting owner/repo and returns the Source
func (s Source) WithRemote(owner, repo string) Source {
	s.Owner = owner
	s.Repo = repo
	return s
}

// WithDefaultSourceBranch sets the default source branch override and returns the Source
func (s Source) WithDefaultSourceBranch(branch string) Source {
	s.DefaultSourceBranch = branch
	return s
}

// HasRemote reports whether the source can be compared through the hosting API
func (s Source) HasRemote() bool {
	return s.Owner != "" && s.Repo != ""
}

// ResolveSourceBranch picks the branch to compare for this source.
// requested is the run's source branch, globalDefault the configured default
// (e.g., "develop"); only a run on the global default is redirected.
func (s Source) ResolveSourceBranch(requested, globalDefault string) string {
	if s.DefaultSourceBranch != "" && requested == globalDefault {
		return s.DefaultSourceBranch
	}
	return requested
}
