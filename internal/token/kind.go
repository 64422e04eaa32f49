package token

// Kind represents the category of a formula token.
type Kind uint8

const (
	// Invalid indicates an uninitialised token.
	Invalid Kind = iota

	// PlusSymbol represents '+'.
	PlusSymbol
	// MinusSymbol represents '-'.
	MinusSymbol
	// MultiplySymbol represents '*'.
	MultiplySymbol
	// DivideSymbol represents '/'.
	DivideSymbol
	// PowerSymbol represents '^'.
	PowerSymbol
	// EqualsSymbol represents '='.
	EqualsSymbol
	// NotEqualsSymbol represents '<>'.
	NotEqualsSymbol
	// GreaterThanSymbol represents '>'.
	GreaterThanSymbol
	// GreaterThanEqualsSymbol represents '>='.
	GreaterThanEqualsSymbol
	// LessThanSymbol represents '<'.
	LessThanSymbol
	// LessThanEqualsSymbol represents '<='.
	LessThanEqualsSymbol
	// BetweenSymbol represents the range operator ':'.
	BetweenSymbol
	// PercentSymbol represents a trailing '%'.
	PercentSymbol
	ParenthesisOpenSymbol  // (
	ParenthesisCloseSymbol // )
	ValueSeparatorSymbol   // ,
	ApostropheSymbol       // '
	DoubleQuoteSymbol      // "
	WhitespaceSymbol
	DecimalSeparatorSymbol
	ExponentSymbol
	GroupSeparatorSymbol
	// SeparatorSymbol is literal punctuation inside dates and times.
	SeparatorSymbol

	Digits
	BooleanLiteral
	TextLiteral
	ColumnReference
	RowReference
	LabelName
	ValueName
	FunctionName
	ErrorLiteral
	Year
	MonthNumber
	MonthName
	MonthNameAbbreviation
	MonthNameInitial
	DayNumber
	Hour
	Minute
	Seconds
	Millisecond
	AmPm

	// Expression is the root of a formula: '=' followed by the body.
	Expression
	Group
	Negative
	Addition
	Subtraction
	Multiplication
	Division
	Power
	Equals
	NotEquals
	GreaterThan
	GreaterThanEquals
	LessThan
	LessThanEquals
	ConditionRightEquals
	ConditionRightNotEquals
	ConditionRightGreaterThan
	ConditionRightGreaterThanEquals
	ConditionRightLessThan
	ConditionRightLessThanEquals
	Cell
	CellRange
	Date
	DateTime
	Time
	Number
	Boolean
	Text
	NamedFunction
	LambdaFunction
	FunctionParameters

	kindCount
)

var kindNames = [kindCount]string{
	Invalid:                         "Invalid",
	PlusSymbol:                      "PlusSymbol",
	MinusSymbol:                     "MinusSymbol",
	MultiplySymbol:                  "MultiplySymbol",
	DivideSymbol:                    "DivideSymbol",
	PowerSymbol:                     "PowerSymbol",
	EqualsSymbol:                    "EqualsSymbol",
	NotEqualsSymbol:                 "NotEqualsSymbol",
	GreaterThanSymbol:               "GreaterThanSymbol",
	GreaterThanEqualsSymbol:         "GreaterThanEqualsSymbol",
	LessThanSymbol:                  "LessThanSymbol",
	LessThanEqualsSymbol:            "LessThanEqualsSymbol",
	BetweenSymbol:                   "BetweenSymbol",
	PercentSymbol:                   "PercentSymbol",
	ParenthesisOpenSymbol:           "ParenthesisOpenSymbol",
	ParenthesisCloseSymbol:          "ParenthesisCloseSymbol",
	ValueSeparatorSymbol:            "ValueSeparatorSymbol",
	ApostropheSymbol:                "ApostropheSymbol",
	DoubleQuoteSymbol:               "DoubleQuoteSymbol",
	WhitespaceSymbol:                "Whitespace",
	DecimalSeparatorSymbol:          "DecimalSeparatorSymbol",
	ExponentSymbol:                  "ExponentSymbol",
	GroupSeparatorSymbol:            "GroupSeparatorSymbol",
	SeparatorSymbol:                 "SeparatorSymbol",
	Digits:                          "Digits",
	BooleanLiteral:                  "BooleanLiteral",
	TextLiteral:                     "TextLiteral",
	ColumnReference:                 "ColumnReference",
	RowReference:                    "RowReference",
	LabelName:                       "LabelName",
	ValueName:                       "ValueName",
	FunctionName:                    "FunctionName",
	ErrorLiteral:                    "ErrorLiteral",
	Year:                            "Year",
	MonthNumber:                     "MonthNumber",
	MonthName:                       "MonthName",
	MonthNameAbbreviation:           "MonthNameAbbreviation",
	MonthNameInitial:                "MonthNameInitial",
	DayNumber:                       "DayNumber",
	Hour:                            "Hour",
	Minute:                          "Minute",
	Seconds:                         "Seconds",
	Millisecond:                     "Millisecond",
	AmPm:                            "AmPm",
	Expression:                      "Expression",
	Group:                           "Group",
	Negative:                        "Negative",
	Addition:                        "Addition",
	Subtraction:                     "Subtraction",
	Multiplication:                  "Multiplication",
	Division:                        "Division",
	Power:                           "Power",
	Equals:                          "Equals",
	NotEquals:                       "NotEquals",
	GreaterThan:                     "GreaterThan",
	GreaterThanEquals:               "GreaterThanEquals",
	LessThan:                        "LessThan",
	LessThanEquals:                  "LessThanEquals",
	ConditionRightEquals:            "ConditionRightEquals",
	ConditionRightNotEquals:         "ConditionRightNotEquals",
	ConditionRightGreaterThan:       "ConditionRightGreaterThan",
	ConditionRightGreaterThanEquals: "ConditionRightGreaterThanEquals",
	ConditionRightLessThan:          "ConditionRightLessThan",
	ConditionRightLessThanEquals:    "ConditionRightLessThanEquals",
	Cell:                            "Cell",
	CellRange:                       "CellRange",
	Date:                            "Date",
	DateTime:                        "DateTime",
	Time:                            "Time",
	Number:                          "Number",
	Boolean:                         "Boolean",
	Text:                            "Text",
	NamedFunction:                   "NamedFunction",
	LambdaFunction:                  "LambdaFunction",
	FunctionParameters:              "FunctionParameters",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsSymbol reports whether k is an operator or punctuation leaf.
func (k Kind) IsSymbol() bool { return k >= PlusSymbol && k <= SeparatorSymbol }

// IsLeaf reports whether tokens of kind k carry a scalar value.
func (k Kind) IsLeaf() bool { return k >= PlusSymbol && k < Expression }

// IsParent reports whether tokens of kind k carry children.
func (k Kind) IsParent() bool { return k >= Expression && k < kindCount }

// IsCondition reports whether k is one of the six comparison composites.
func (k Kind) IsCondition() bool { return k >= Equals && k <= LessThanEquals }

// IsConditionRight reports whether k is a one-sided comparison.
func (k Kind) IsConditionRight() bool {
	return k >= ConditionRightEquals && k <= ConditionRightLessThanEquals
}

// IsBinary reports whether k folds exactly two operands.
func (k Kind) IsBinary() bool { return k >= Addition && k <= LessThanEquals }

// IsTemporalLeaf reports whether k is a date or time component.
func (k Kind) IsTemporalLeaf() bool { return k >= Year && k <= AmPm }
