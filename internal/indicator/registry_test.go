package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

// RegistryTestSuite is a test suite for the indicator registry
type RegistryTestSuite struct {
	suite.Suite
	registry Registry
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewRegistry()
}

// TestRegistrySuite runs the test suite
func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) TestRegisterAndGet() {
	ema := NewEMA()
	suite.Require().NoError(suite.registry.RegisterIndicator(ema))

	got, err := suite.registry.GetIndicator(types.IndicatorTypeEMA)
	suite.Assert().NoError(err)
	suite.Assert().Same(ema, got)
}

func (suite *RegistryTestSuite) TestDuplicateRegistration() {
	suite.Require().NoError(suite.registry.RegisterIndicator(NewEMA()))

	err := suite.registry.RegisterIndicator(NewEMA())
	suite.Assert().Error(err)
	suite.Assert().True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
}

func (suite *RegistryTestSuite) TestGetUnknown() {
	_, err := suite.registry.GetIndicator(types.IndicatorTypeRSI)
	suite.Assert().Error(err)
	suite.Assert().True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestListAndRemove() {
	suite.Require().NoError(suite.registry.RegisterIndicator(NewEMA()))
	suite.Require().NoError(suite.registry.RegisterIndicator(NewRSI()))
	suite.Require().NoError(suite.registry.RegisterIndicator(NewBollingerBands()))

	names := suite.registry.ListIndicators()
	suite.Assert().Len(names, 3)
	suite.Assert().ElementsMatch(names, []types.IndicatorType{
		types.IndicatorTypeEMA,
		types.IndicatorTypeRSI,
		types.IndicatorTypeBollingerBands,
	})

	suite.Assert().NoError(suite.registry.RemoveIndicator(types.IndicatorTypeRSI))

	err := suite.registry.RemoveIndicator(types.IndicatorTypeRSI)
	suite.Assert().Error(err)
	suite.Assert().True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}
