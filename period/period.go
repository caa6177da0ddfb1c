// Package period handles quarter labels of the form YYYY-Qn used to key quarterly observations
package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QuartersPerYear is the number of quarters in a calendar year and the seasonal period of a
// quarterly series
const QuartersPerYear = 4

var ErrInvalidPeriod = errors.New("invalid quarter period label")

// Quarter represents a single calendar quarter
type Quarter struct {
	Year int
	Q    int
}

// New returns a quarter for the given year and quarter number
func New(year, q int) (Quarter, error) {
	if q < 1 || q > QuartersPerYear {
		return Quarter{}, fmt.Errorf("quarter %d out of range, %w", q, ErrInvalidPeriod)
	}
	return Quarter{Year: year, Q: q}, nil
}

// Parse reads a label such as "2024-Q3". The quarter suffix is case insensitive.
func Parse(label string) (Quarter, error) {
	yearStr, qStr, found := strings.Cut(strings.TrimSpace(label), "-")
	if !found {
		return Quarter{}, fmt.Errorf("missing separator in %q, %w", label, ErrInvalidPeriod)
	}
	if len(qStr) != 2 || (qStr[0] != 'Q' && qStr[0] != 'q') {
		return Quarter{}, fmt.Errorf("missing quarter suffix in %q, %w", label, ErrInvalidPeriod)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Quarter{}, fmt.Errorf("unable to parse year in %q, %w", label, ErrInvalidPeriod)
	}
	q, err := strconv.Atoi(qStr[1:])
	if err != nil {
		return Quarter{}, fmt.Errorf("unable to parse quarter in %q, %w", label, ErrInvalidPeriod)
	}
	return New(year, q)
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(label string) Quarter {
	q, err := Parse(label)
	if err != nil {
		panic(err)
	}
	return q
}

// String renders the quarter as YYYY-Qn
func (p Quarter) String() string {
	return fmt.Sprintf("%d-Q%d", p.Year, p.Q)
}

// Label renders only the quarter portion, e.g. Q3
func (p Quarter) Label() string {
	return "Q" + strconv.Itoa(p.Q)
}

// Index returns a monotonically increasing ordinal of the quarter
func (p Quarter) Index() int {
	return p.Year*QuartersPerYear + p.Q - 1
}

// Add moves the quarter n quarters forward, or backward for negative n, rolling the year over
// every fourth quarter.
func (p Quarter) Add(n int) Quarter {
	idx := p.Index() + n
	year := idx / QuartersPerYear
	q := idx%QuartersPerYear + 1
	if idx < 0 && idx%QuartersPerYear != 0 {
		year--
		q += QuartersPerYear
	}
	return Quarter{Year: year, Q: q}
}

// Before reports whether p comes strictly before o
func (p Quarter) Before(o Quarter) bool {
	return p.Index() < o.Index()
}

// Start returns the first instant of the quarter in UTC
func (p Quarter) Start() time.Time {
	return time.Date(p.Year, time.Month((p.Q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following quarter in UTC
func (p Quarter) End() time.Time {
	return p.Add(1).Start()
}

// OneHot returns the quarter as four indicator values where position Q-1 is set to 1
func (p Quarter) OneHot() [QuartersPerYear]float64 {
	var flags [QuartersPerYear]float64
	if p.Q >= 1 && p.Q <= QuartersPerYear {
		flags[p.Q-1] = 1.0
	}
	return flags
}
