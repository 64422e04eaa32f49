package format

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	// Width bounds the input column of result tables; 0 means 40.
	Width int
}

// JSONOpts configures JSON output.
type JSONOpts struct {
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}
