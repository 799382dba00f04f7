// Package symbols defines the reel symbol set and the static paytables the
// spin engine evaluates lines against.
package symbols

// Symbol identifies one reel-cell face.
type Symbol string

const (
	Wild    Symbol = "wild"
	Scatter Symbol = "scatter"

	Fa       Symbol = "fa"       // 发 - highest value
	Zhong    Symbol = "zhong"    // 中 - premium high
	Bai      Symbol = "bai"      // 白 - premium mid
	Bawan    Symbol = "bawan"    // 八萬 - medium
	Wusuo    Symbol = "wusuo"    // 五索 - low
	Liangtong Symbol = "liangtong" // 两筒 - lowest
)

// PayingSymbols returns every symbol that can form a winning line.
func PayingSymbols() []Symbol {
	return []Symbol{Fa, Zhong, Bai, Bawan, Wusuo, Liangtong}
}

// AllSymbols returns the complete reel alphabet, paying and special.
func AllSymbols() []Symbol {
	return []Symbol{Wild, Scatter, Fa, Zhong, Bai, Bawan, Wusuo, Liangtong}
}

// IsPayingSymbol reports whether sym can anchor a payline run.
func IsPayingSymbol(sym Symbol) bool {
	switch sym {
	case Fa, Zhong, Bai, Bawan, Wusuo, Liangtong:
		return true
	default:
		return false
	}
}

// CanBeSubstituted reports whether WILD can stand in for sym in a run.
// WILD substitutes for every paying symbol but never for SCATTER.
func CanBeSubstituted(sym Symbol) bool {
	return IsPayingSymbol(sym)
}

// LineMultiplier is the static payline paytable: bet multiplier by symbol
// and run length (3, 4 or 5 in a row). A zero entry means that run length
// does not pay for that symbol.
var LineMultiplier = map[Symbol][6]float64{
	//               idx:0  1  2    3     4     5
	Wild:      {0, 0, 0, 8.0, 30.0, 150.0},
	Fa:        {0, 0, 0, 5.0, 20.0, 100.0},
	Zhong:     {0, 0, 0, 3.0, 12.0, 60.0},
	Bai:       {0, 0, 0, 2.0, 8.0, 40.0},
	Bawan:     {0, 0, 0, 1.0, 5.0, 25.0},
	Wusuo:     {0, 0, 0, 0.5, 2.5, 12.0},
	Liangtong: {0, 0, 0, 0.3, 1.5, 8.0},
}

// ScatterPay is the bet multiplier awarded on the special lineId -1 payout
// when 3, 4 or 5 scatters land anywhere on the grid.
var ScatterPay = map[int]float64{
	3: 2.0,
	4: 10.0,
	5: 50.0,
}
