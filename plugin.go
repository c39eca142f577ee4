package strata

// Plugin is a trivial record pairing a name with initialization and
// teardown callbacks invoked by the Registry. Init runs immediately when
// the plugin is added; Teardown runs when the Registry is torn down, in
// reverse order of addition, before the pipeline's and resources'
// teardowns.
type Plugin struct {
	Name     string
	Init     func(r *Registry)
	Teardown func(r *Registry)
}
