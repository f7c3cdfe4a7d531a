package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solcurve/launchpad/internal/engine"
)

func sampleRecords() []SwapRecord {
	pool := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	return []SwapRecord{
		{Timestamp: base, Pool: pool, Trader: alice, Side: SideBuy, AmountIn: 1_000_000, AmountOut: 30_000_000, Fee: 3_000},
		{Timestamp: base.Add(time.Minute), Pool: pool, Trader: bob, Side: SideBuy, AmountIn: 2_000_000, AmountOut: 59_000_000, Fee: 6_000},
		{Timestamp: base.Add(2 * time.Minute), Pool: pool, Trader: alice, Side: SideSell, AmountIn: 30_000_000, AmountOut: 990_000, Fee: 90_000},
	}
}

func TestRecorderCapturesSwapEvents(t *testing.T) {
	rec := NewRecorder()
	pool := solana.NewWallet().PublicKey()
	trader := solana.NewWallet().PublicKey()

	require.NoError(t, rec.HandleEvent(context.Background(), engine.Event{
		Type:      engine.EventSwapExecuted,
		Timestamp: time.Now(),
		Data: engine.SwapExecutedData{
			Pool: pool, Trader: trader, BaseToken: true,
			AmountIn: 500, AmountOut: 12_000, Fee: 1,
		},
	}))
	// Non-swap events are ignored.
	require.NoError(t, rec.HandleEvent(context.Background(), engine.Event{
		Type:      engine.EventTokenMinted,
		Timestamp: time.Now(),
		Data:      engine.TokenMintedData{},
	}))

	records := rec.Records()
	require.Len(t, records, 1)
	assert.Equal(t, SideBuy, records[0].Side)
	assert.Equal(t, uint64(500), records[0].AmountIn)
	assert.Equal(t, pool, records[0].Pool)
}

func TestExportCSV(t *testing.T) {
	exporter := NewExporter(zap.NewNop())
	dir := t.TempDir()

	path, err := exporter.Export(sampleRecords(), Options{
		Format:    FormatCSV,
		OutputDir: dir,
	})
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 3 records
	assert.Equal(t, csvHeaders(), rows[0])
	assert.Equal(t, "buy", rows[1][3])
	assert.Equal(t, "sell", rows[3][3])
}

func TestExportJSONSummary(t *testing.T) {
	exporter := NewExporter(zap.NewNop())
	dir := t.TempDir()

	path, err := exporter.Export(sampleRecords(), Options{
		Format:    FormatJSON,
		OutputDir: dir,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out struct {
		SwapCount int          `json:"swap_count"`
		Swaps     []SwapRecord `json:"swaps"`
		Summary   Summary      `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 3, out.SwapCount)
	assert.Equal(t, 2, out.Summary.BuyCount)
	assert.Equal(t, 1, out.Summary.SellCount)
	assert.Equal(t, 1, out.Summary.UniquePools)
	assert.Equal(t, 2, out.Summary.UniqueTraders)
	assert.Equal(t, uint64(3_000_000), out.Summary.TotalBaseIn)
	assert.Equal(t, uint64(99_000), out.Summary.TotalFeesPaid)
}

func TestExportFilters(t *testing.T) {
	exporter := NewExporter(zap.NewNop())
	records := sampleRecords()

	sells := exporter.filter(records, Options{SideFilter: SideSell})
	require.Len(t, sells, 1)
	assert.Equal(t, SideSell, sells[0].Side)

	windowed := exporter.filter(records, Options{
		StartTime: records[1].Timestamp,
	})
	assert.Len(t, windowed, 2)

	byPool := exporter.filter(records, Options{PoolFilter: records[0].Pool.String()})
	assert.Len(t, byPool, 3)

	none := exporter.filter(records, Options{PoolFilter: solana.NewWallet().PublicKey().String()})
	assert.Empty(t, none)
}

func TestExportRejectsEmptySet(t *testing.T) {
	exporter := NewExporter(zap.NewNop())
	_, err := exporter.Export(nil, Options{Format: FormatCSV, OutputDir: t.TempDir()})
	assert.Error(t, err)
}
