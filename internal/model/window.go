package model

// Fold is one expanding-window cross-validation partition. Indices refer to
// positions in the training windows and are contiguous and ascending.
type Fold struct {
	Index int // 1-based
	Train []int
	Test  []int
}

// Shape is the input/output contract shared by every model in a bank.
type Shape struct {
	Steps    int // n_steps_in
	Features int // n_features
	Outputs  int // n_steps_out
}
