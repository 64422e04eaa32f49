package fuzztests

import "testing"

const maxFuzzInput = 4 << 10

var formulaSeeds = []string{
	"",
	"=",
	"=1+2*3",
	"=-(1+2)%",
	"=2^3^2",
	`="a""b"`,
	"=TRUE",
	"=#DIV/0!",
	"=A1",
	"=$B$2:C10",
	"=Total*TAX_RATE",
	"=SUM(A1:A3, 4, -5)",
	`=IF(A1>=10,"big",CONCAT("small ",A1))`,
	"=LAMBDA(x,y,x*y)(3,4)",
	"=AND(NOT(FALSE),1<>2)",
	"=1+",
	"=(((1)",
	"=A1 B1",
	"=1&2",
	"2024-03-15",
	"13:45",
	"12:30 PM",
	"3.5",
	"hello",
}

func addSeeds(f *testing.F) {
	for _, s := range formulaSeeds {
		f.Add(s)
	}
}

func clamp(s string) string {
	if len(s) <= maxFuzzInput {
		return s
	}
	return s[:maxFuzzInput]
}
