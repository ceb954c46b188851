package domain

// SyncOptions controls a `sync` run.
type SyncOptions struct {
	Targets []string

	// RecreatePods and Force override the stack's helmDefaults when set.
	RecreatePods *bool
	Force        *bool

	KeepTempFiles bool
	SkipRepos     bool
}

// DeleteOptions controls a `delete` run. An empty target list is refused
// unless All is set.
type DeleteOptions struct {
	Targets []string
	Purge   bool
	All     bool
}

// GetOptions controls a `get` run.
type GetOptions struct {
	Targets []string
}

// ShowOptions controls a `show` run.
type ShowOptions struct {
	Targets []string
	Diff    bool // print a unified diff of base vs resolved releases
}
