package pkg

import (
	"github.com/shopspring/decimal"
)

// MoneyScale e a escala das colunas decimal(15,2).
const MoneyScale = 2

func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Percent devolve floor(current*100/target) limitado a [0, 100].
func Percent(current, target decimal.Decimal) int {
	if !target.IsPositive() || !current.IsPositive() {
		return 0
	}
	p := current.Mul(decimal.NewFromInt(100)).Div(target).Floor().IntPart()
	if p > 100 {
		return 100
	}
	return int(p)
}
