package reporting

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/quant-backtest/internal/types"
)

// CSVWriterTestSuite is a test suite for the CSV result writer
type CSVWriterTestSuite struct {
	suite.Suite
	writer *CSVWriter
}

func (suite *CSVWriterTestSuite) SetupTest() {
	writer, err := NewCSVWriter(suite.T().TempDir())
	suite.Require().NoError(err)
	suite.writer = writer
}

func (suite *CSVWriterTestSuite) TearDownTest() {
	if suite.writer != nil {
		suite.writer.Close()
	}
}

// TestCSVWriterSuite runs the test suite
func TestCSVWriterSuite(t *testing.T) {
	suite.Run(t, new(CSVWriterTestSuite))
}

func (suite *CSVWriterTestSuite) readCSV(name string) [][]string {
	f, err := os.Open(filepath.Join(suite.writer.RunDir(), name))
	suite.Require().NoError(err)

	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	suite.Require().NoError(err)

	return records
}

// TestClosePartialWriter verifies cleanup of a writer whose files were
// never (or only partially) opened does not panic and closes what exists
func (suite *CSVWriterTestSuite) TestClosePartialWriter() {
	suite.Assert().NoError((&CSVWriter{}).Close())

	runDir := suite.T().TempDir()

	f, err := os.Create(filepath.Join(runDir, "trades.csv"))
	suite.Require().NoError(err)

	partial := &CSVWriter{runDir: runDir, tradesFile: f, tradesCsv: csv.NewWriter(f)}
	suite.Assert().NoError(partial.closeFiles())

	// The file is really closed: a second close fails
	suite.Assert().Error(f.Close())
}

func (suite *CSVWriterTestSuite) TestWriteTrade() {
	trade := types.Trade{
		ID:         "trade-1",
		Time:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Action:     types.TradeActionBuy,
		Price:      101.5,
		Shares:     40,
		Value:      4060,
		Confidence: 0.72,
		Reason:     "RSI oversold",
	}

	suite.Require().NoError(suite.writer.WriteTrade(trade))

	records := suite.readCSV("trades.csv")
	suite.Require().Len(records, 2)
	suite.Assert().Equal("id", records[0][0])
	suite.Assert().Equal("trade-1", records[1][0])
	suite.Assert().Equal("BUY", records[1][2])
	suite.Assert().Equal("40", records[1][4])
	suite.Assert().Equal("RSI oversold", records[1][7])
}

func (suite *CSVWriterTestSuite) TestWriteSignal() {
	result := types.StrategyResult{
		Time:         time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Signal:       types.SignalTypeBuy,
		Confidence:   0.8,
		Reason:       "RSI oversold",
		CurrentPrice: 95.0,
		Indicators: types.IndicatorSnapshot{
			EMA:      100.0,
			RSI:      25.0,
			BBUpper:  105.0,
			BBMiddle: 100.0,
			BBLower:  96.0,
		},
	}

	suite.Require().NoError(suite.writer.WriteSignal(result))

	records := suite.readCSV("signals.csv")
	suite.Require().Len(records, 2)
	suite.Assert().Equal("buy", records[1][1])
	suite.Assert().Equal("25.000000", records[1][5])
}

func (suite *CSVWriterTestSuite) TestWriteEquityCurve() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	values := []float64{10000, 10100, 9900}
	timestamps := []time.Time{start, start.AddDate(0, 0, 1), start.AddDate(0, 0, 2)}

	suite.Require().NoError(suite.writer.WriteEquityCurve(values, timestamps))

	records := suite.readCSV("equity_curve.csv")
	suite.Require().Len(records, 4)
	suite.Assert().Equal(start.Format(time.RFC3339), records[1][0])
	suite.Assert().Equal("9900.000000", records[3][1])
}

func (suite *CSVWriterTestSuite) TestWriteMetrics() {
	metrics := types.BacktestMetrics{
		StartingCapital: 10000,
		EndingCapital:   10500,
		TotalReturnPct:  5.0,
		TotalTrades:     4,
		WinningTrades:   2,
	}

	suite.Require().NoError(suite.writer.WriteMetrics(metrics))

	data, err := os.ReadFile(filepath.Join(suite.writer.RunDir(), "metrics.yaml"))
	suite.Require().NoError(err)

	var loaded types.BacktestMetrics
	suite.Require().NoError(yaml.Unmarshal(data, &loaded))
	suite.Assert().Equal(metrics, loaded)
}
