package expr

// Op is a binary operator.
type Op uint8

const (
	OpAdd Op = iota + 1
	OpSub
	OpMul
	OpDiv
	OpPow
	OpEq
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
)

var opInfo = [...]struct {
	text string
	prec int
}{
	OpAdd: {"+", 2},
	OpSub: {"-", 2},
	OpMul: {"*", 3},
	OpDiv: {"/", 3},
	OpPow: {"^", 4},
	OpEq:  {"=", 1},
	OpNe:  {"<>", 1},
	OpGt:  {">", 1},
	OpGe:  {">=", 1},
	OpLt:  {"<", 1},
	OpLe:  {"<=", 1},
}

func (o Op) String() string {
	if int(o) < len(opInfo) && o != 0 {
		return opInfo[o].text
	}
	return "?"
}

// IsComparison reports whether o yields a boolean.
func (o Op) IsComparison() bool { return o >= OpEq && o <= OpLe }

func (o Op) precedence() int {
	if int(o) < len(opInfo) {
		return opInfo[o].prec
	}
	return 0
}
