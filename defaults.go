package quill

// registerDefaults installs the built-in filters on a fresh engine.
func registerDefaults(engine *Engine) {
	// String filters
	engine.AddFilter("upper", filterUpper)
	engine.AddFilter("lower", filterLower)
	engine.AddFilter("trim", filterTrim)

	// Sequence filters
	engine.AddFilter("first", filterFirst)
	engine.AddFilter("last", filterLast)
	engine.AddFilter("len", filterLen)
}
