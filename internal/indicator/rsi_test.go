package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// RSITestSuite is a test suite for the RSI indicator
type RSITestSuite struct {
	suite.Suite
	rsi *RSI
}

// SetupTest creates a fresh indicator for each test
func (suite *RSITestSuite) SetupTest() {
	suite.rsi = NewRSI()
}

// TestRSISuite runs the test suite
func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

// TestFirstUpdate verifies that a single observation reads neutral
func (suite *RSITestSuite) TestFirstUpdate() {
	suite.Assert().InDelta(50.0, suite.rsi.Update(100.0), 1e-9)
	suite.Assert().True(suite.rsi.IsInitialized())
}

// TestFlatMarket verifies that unchanged prices keep RSI at 50
func (suite *RSITestSuite) TestFlatMarket() {
	for i := 0; i < 10; i++ {
		suite.Assert().InDelta(50.0, suite.rsi.Update(100.0), 1e-9)
	}
}

// TestPureUptrend verifies the zero-average-loss fallback
func (suite *RSITestSuite) TestPureUptrend() {
	suite.rsi.Update(100.0)

	var value float64
	for _, p := range []float64{101, 102, 103, 104, 105} {
		value = suite.rsi.Update(p)
	}

	suite.Assert().InDelta(100.0, value, 1e-9)
}

// TestMixedSequence verifies the EMA-smoothed RS calculation by hand.
// Period 14, alpha = 2/15. Prices 100, 102, 99:
// after 102: avgGain=2, avgLoss=0 -> 100
// after 99: avgGain=2*(13/15), avgLoss=3*(2/15) -> RS=13/3 -> 81.25
func (suite *RSITestSuite) TestMixedSequence() {
	suite.Assert().InDelta(50.0, suite.rsi.Update(100.0), 1e-9)
	suite.Assert().InDelta(100.0, suite.rsi.Update(102.0), 1e-9)
	suite.Assert().InDelta(81.25, suite.rsi.Update(99.0), 1e-9)
}

// TestBounds verifies RSI stays in [0, 100] over a volatile sequence
func (suite *RSITestSuite) TestBounds() {
	prices := []float64{100, 110, 90, 120, 80, 130, 70, 140, 60, 150, 50}

	for _, p := range prices {
		value := suite.rsi.Update(p)
		suite.Assert().GreaterOrEqual(value, 0.0)
		suite.Assert().LessOrEqual(value, 100.0)
	}
}

// TestPureDowntrend verifies RSI approaches the floor when every change
// is a loss
func (suite *RSITestSuite) TestPureDowntrend() {
	suite.rsi.Update(100.0)

	var value float64
	for _, p := range []float64{99, 98, 97, 96, 95} {
		value = suite.rsi.Update(p)
	}

	suite.Assert().InDelta(0.0, value, 1e-9)
}

func (suite *RSITestSuite) TestResetDeterminism() {
	prices := []float64{100, 102, 99, 99, 104, 101}

	var first float64
	for _, p := range prices {
		first = suite.rsi.Update(p)
	}

	suite.rsi.Reset()
	suite.Assert().False(suite.rsi.IsInitialized())
	suite.Assert().InDelta(50.0, suite.rsi.Value(), 1e-9)

	var second float64
	for _, p := range prices {
		second = suite.rsi.Update(p)
	}

	suite.Assert().Equal(first, second)
}
