package duckdb

import (
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// BigIntMath is arbitrary-precision arithmetic over decimal strings.
// Conversions that leave the int64 range consult it, and fail with
// ErrBigNumberUnsupported when Available reports false.
type BigIntMath interface {
	Available() bool
	Add(a, b string) (string, error)
	Sub(a, b string) (string, error)
	Mul(a, b string) (string, error)
	Div(a, b string) (string, error)
	Mod(a, b string) (string, error)
	Pow(a, b string) (string, error)
}

// DefaultBigIntMathPrecision is enough digits for any 128-bit integer scaled by a DECIMAL(38,38).
const DefaultBigIntMathPrecision = 80

// APDMath implements BigIntMath with github.com/cockroachdb/apd/v3.
type APDMath struct {
	ctx *apd.Context
}

// NewAPDMath returns an APDMath computing with the given number of significant digits.
func NewAPDMath(precision uint32) *APDMath {
	if precision == 0 {
		precision = DefaultBigIntMathPrecision
	}
	return &APDMath{ctx: apd.BaseContext.WithPrecision(precision)}
}

func (*APDMath) Available() bool { return true }

func (m *APDMath) Add(a, b string) (string, error) { return m.apply(a, b, m.ctx.Add) }
func (m *APDMath) Sub(a, b string) (string, error) { return m.apply(a, b, m.ctx.Sub) }
func (m *APDMath) Mul(a, b string) (string, error) { return m.apply(a, b, m.ctx.Mul) }
func (m *APDMath) Div(a, b string) (string, error) { return m.apply(a, b, m.ctx.Quo) }
func (m *APDMath) Mod(a, b string) (string, error) { return m.apply(a, b, m.ctx.Rem) }
func (m *APDMath) Pow(a, b string) (string, error) { return m.apply(a, b, m.ctx.Pow) }

func (m *APDMath) apply(a, b string, op func(d, x, y *apd.Decimal) (apd.Condition, error)) (string, error) {
	x, _, err := apd.NewFromString(a)
	if err != nil {
		return "", err
	}
	y, _, err := apd.NewFromString(b)
	if err != nil {
		return "", err
	}

	var d apd.Decimal
	if _, err = op(&d, x, y); err != nil {
		return "", err
	}
	if _, _, err = m.ctx.Reduce(&d, &d); err != nil {
		return "", err
	}
	return d.Text('f'), nil
}

// NoBigIntMath is the absent capability.
type NoBigIntMath struct{}

func (NoBigIntMath) Available() bool { return false }

func (NoBigIntMath) Add(string, string) (string, error) { return "", bigNumberError("addition") }
func (NoBigIntMath) Sub(string, string) (string, error) { return "", bigNumberError("subtraction") }
func (NoBigIntMath) Mul(string, string) (string, error) { return "", bigNumberError("multiplication") }
func (NoBigIntMath) Div(string, string) (string, error) { return "", bigNumberError("division") }
func (NoBigIntMath) Mod(string, string) (string, error) { return "", bigNumberError("modulo") }
func (NoBigIntMath) Pow(string, string) (string, error) { return "", bigNumberError("power") }

const twoTo64 = "18446744073709551616"

// composeHugeInt returns upper*2^64 + lower. The result is an int64 when it
// fits, otherwise a decimal string computed through bm.
func composeHugeInt(bm BigIntMath, lower uint64, upper int64) (any, error) {
	// The value fits in an int64 exactly when upper is the sign extension of lower.
	if (upper == 0 && lower <= 1<<63-1) || (upper == -1 && lower >= 1<<63) {
		return int64(lower), nil
	}
	if bm == nil || !bm.Available() {
		return nil, bigNumberError("HUGEINT value")
	}
	hi, err := bm.Mul(strconv.FormatInt(upper, 10), twoTo64)
	if err != nil {
		return nil, err
	}
	return bm.Add(hi, strconv.FormatUint(lower, 10))
}

// composeUHugeInt is composeHugeInt for the unsigned 128-bit type.
func composeUHugeInt(bm BigIntMath, lower uint64, upper uint64) (any, error) {
	if upper == 0 && lower <= 1<<63-1 {
		return int64(lower), nil
	}
	if bm == nil || !bm.Available() {
		return nil, bigNumberError("UHUGEINT value")
	}
	hi, err := bm.Mul(strconv.FormatUint(upper, 10), twoTo64)
	if err != nil {
		return nil, err
	}
	return bm.Add(hi, strconv.FormatUint(lower, 10))
}

// composeUBigInt maps a UBIGINT onto int64, or onto a decimal string above math.MaxInt64.
func composeUBigInt(bm BigIntMath, v uint64) (any, error) {
	if v <= 1<<63-1 {
		return int64(v), nil
	}
	if bm == nil || !bm.Available() {
		return nil, bigNumberError("UBIGINT value")
	}
	return bm.Add(strconv.FormatInt(int64(v), 10), twoTo64)
}
