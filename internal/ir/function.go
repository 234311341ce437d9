package ir

// OffsetRange is a half-open [Start, End) span of source offsets.
type OffsetRange struct {
	Start, End int
}

// Parameter is a declared function/method/constructor parameter.
type Parameter struct {
	Name     string
	TypeName string
	Nullable bool
}

// Function is the unit over which every later stage (SSA, facts, Datalog,
// abstract interpretation, metrics) runs.
type Function struct {
	Name        string
	CFG         *CFG
	Parameters  []Parameter
	// ClassName is "" for a top-level function; set for methods and
	// constructors, which additionally bind an implicit "this" receiver at
	// entry (version 0), per spec.md §4.3 "Parameters are written at entry
	// with version 0".
	ClassName   string
	HasReceiver bool
	FilePath    string
	OffsetRange OffsetRange
}
