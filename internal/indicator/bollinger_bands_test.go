package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

// BollingerBandsTestSuite is a test suite for the Bollinger Bands indicator
type BollingerBandsTestSuite struct {
	suite.Suite
	bb *BollingerBands
}

// SetupTest creates a fresh indicator with period 5, 2 standard deviations
func (suite *BollingerBandsTestSuite) SetupTest() {
	bb, err := NewBollingerBandsWithConfig(5, 2.0)
	suite.Require().NoError(err)
	suite.bb = bb
}

// TestBollingerBandsSuite runs the test suite
func TestBollingerBandsSuite(t *testing.T) {
	suite.Run(t, new(BollingerBandsTestSuite))
}

// TestWindowNotFull verifies the indicator stays silent until it has a
// full window of prices
func (suite *BollingerBandsTestSuite) TestWindowNotFull() {
	for _, p := range []float64{90, 95, 100, 105} {
		bands := suite.bb.UpdateBands(p)
		suite.Assert().Equal(Bands{}, bands)
		suite.Assert().False(suite.bb.IsInitialized())
	}

	_, err := suite.bb.Value()
	suite.Assert().Error(err)
	suite.Assert().True(errors.IsInsufficientDataError(err))
}

// TestBandCalculation verifies the SMA and population standard deviation.
// Prices 90..110 step 5: mean=100, variance=50, stddev=sqrt(50).
func (suite *BollingerBandsTestSuite) TestBandCalculation() {
	var bands Bands
	for _, p := range []float64{90, 95, 100, 105, 110} {
		bands = suite.bb.UpdateBands(p)
	}

	sigma := math.Sqrt(50.0)

	suite.Assert().True(suite.bb.IsInitialized())
	suite.Assert().InDelta(100.0, bands.Middle, 1e-9)
	suite.Assert().InDelta(100.0+2.0*sigma, bands.Upper, 1e-9)
	suite.Assert().InDelta(100.0-2.0*sigma, bands.Lower, 1e-9)
}

// TestWindowEviction verifies that the oldest price drops out once the
// window is full
func (suite *BollingerBandsTestSuite) TestWindowEviction() {
	for _, p := range []float64{90, 95, 100, 105, 110} {
		suite.bb.UpdateBands(p)
	}

	// Window becomes [95, 100, 105, 110, 115], mean 105
	bands := suite.bb.UpdateBands(115)
	suite.Assert().InDelta(105.0, bands.Middle, 1e-9)
}

// TestBandOrdering verifies upper >= middle >= lower over a volatile series
func (suite *BollingerBandsTestSuite) TestBandOrdering() {
	prices := []float64{100, 120, 80, 140, 60, 100, 95, 105}

	for _, p := range prices {
		suite.bb.UpdateBands(p)
		if !suite.bb.IsInitialized() {
			continue
		}

		bands, err := suite.bb.Value()
		suite.Require().NoError(err)
		suite.Assert().GreaterOrEqual(bands.Upper, bands.Middle)
		suite.Assert().GreaterOrEqual(bands.Middle, bands.Lower)
	}
}

// TestConstantPrices verifies a zero-width channel on constant input
func (suite *BollingerBandsTestSuite) TestConstantPrices() {
	var bands Bands
	for i := 0; i < 5; i++ {
		bands = suite.bb.UpdateBands(42.0)
	}

	suite.Assert().InDelta(42.0, bands.Upper, 1e-9)
	suite.Assert().InDelta(42.0, bands.Middle, 1e-9)
	suite.Assert().InDelta(42.0, bands.Lower, 1e-9)
}

func (suite *BollingerBandsTestSuite) TestUpdateReturnsMiddle() {
	for _, p := range []float64{90, 95, 100, 105} {
		suite.bb.Update(p)
	}

	suite.Assert().InDelta(100.0, suite.bb.Update(110), 1e-9)
}

func (suite *BollingerBandsTestSuite) TestConfig() {
	suite.Run("valid config resets state", func() {
		for _, p := range []float64{90, 95, 100, 105, 110} {
			suite.bb.UpdateBands(p)
		}
		suite.Require().True(suite.bb.IsInitialized())

		err := suite.bb.Config(10, 1.5)
		suite.Assert().NoError(err)
		suite.Assert().False(suite.bb.IsInitialized())
	})

	suite.Run("wrong parameter count", func() {
		err := suite.bb.Config(10)
		suite.Assert().Error(err)
		suite.Assert().True(errors.HasCode(err, errors.ErrCodeMissingParameter))
	})

	suite.Run("invalid stddev", func() {
		err := suite.bb.Config(10, -2.0)
		suite.Assert().Error(err)
		suite.Assert().True(errors.HasCode(err, errors.ErrCodeInvalidStdDev))
	})
}
