package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solcurve/launchpad/internal/engine"
)

// Format represents the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Side labels the direction of a swap.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// SwapRecord is one executed swap as captured from the event stream.
type SwapRecord struct {
	Timestamp time.Time        `json:"timestamp"`
	Pool      solana.PublicKey `json:"pool"`
	Trader    solana.PublicKey `json:"trader"`
	Side      string           `json:"side"`
	AmountIn  uint64           `json:"amount_in"`
	AmountOut uint64           `json:"amount_out"`
	Fee       uint64           `json:"fee"`
}

// Recorder accumulates swap records from engine events. Its HandleEvent
// method plugs into the event bus.
type Recorder struct {
	mu      sync.Mutex
	records []SwapRecord
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// HandleEvent records swap events and ignores everything else.
func (r *Recorder) HandleEvent(_ context.Context, event engine.Event) error {
	data, ok := event.Data.(engine.SwapExecutedData)
	if !ok {
		return nil
	}
	side := SideSell
	if data.BaseToken {
		side = SideBuy
	}
	r.mu.Lock()
	r.records = append(r.records, SwapRecord{
		Timestamp: event.Timestamp,
		Pool:      data.Pool,
		Trader:    data.Trader,
		Side:      side,
		AmountIn:  data.AmountIn,
		AmountOut: data.AmountOut,
		Fee:       data.Fee,
	})
	r.mu.Unlock()
	return nil
}

// Records returns a copy of everything captured so far.
func (r *Recorder) Records() []SwapRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SwapRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Options configures the export behavior
type Options struct {
	Format     Format
	StartTime  time.Time
	EndTime    time.Time
	PoolFilter string // Filter by pool address
	SideFilter string // Filter by side (buy/sell)
	OutputDir  string
}

// Exporter writes swap histories to disk.
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new swap history exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{
		logger: logger,
	}
}

// Export writes the given records based on the provided options and returns
// the output path.
func (e *Exporter) Export(records []SwapRecord, options Options) (string, error) {
	filtered := e.filter(records, options)

	if len(filtered) == 0 {
		return "", fmt.Errorf("no swaps match the export criteria")
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.Before(filtered[j].Timestamp)
	})

	filename := e.generateFilename(options)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = e.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = e.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}

	if err != nil {
		return "", err
	}

	e.logger.Info("Swaps exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// filter applies filters to the record list
func (e *Exporter) filter(records []SwapRecord, options Options) []SwapRecord {
	var filtered []SwapRecord

	for _, rec := range records {
		// Time filter
		if !options.StartTime.IsZero() && rec.Timestamp.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && rec.Timestamp.After(options.EndTime) {
			continue
		}

		// Pool filter
		if options.PoolFilter != "" && rec.Pool.String() != options.PoolFilter {
			continue
		}

		// Side filter
		if options.SideFilter != "" && rec.Side != options.SideFilter {
			continue
		}

		filtered = append(filtered, rec)
	}

	return filtered
}

// generateFilename creates a filename based on export options
func (e *Exporter) generateFilename(options Options) string {
	timestamp := time.Now().Format("20060102_150405")

	var prefix string
	if options.SideFilter != "" {
		prefix = fmt.Sprintf("swaps_%s", options.SideFilter)
	} else {
		prefix = "swaps_all"
	}

	if options.PoolFilter != "" {
		prefix += "_" + options.PoolFilter[:8]
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

func csvHeaders() []string {
	return []string{"timestamp", "pool", "trader", "side", "amount_in", "amount_out", "fee"}
}

func (rec SwapRecord) toCSV() []string {
	return []string{
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.Pool.String(),
		rec.Trader.String(),
		rec.Side,
		strconv.FormatUint(rec.AmountIn, 10),
		strconv.FormatUint(rec.AmountOut, 10),
		strconv.FormatUint(rec.Fee, 10),
	}
}

// exportToCSV exports records to CSV format
func (e *Exporter) exportToCSV(records []SwapRecord, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		if err := writer.Write(rec.toCSV()); err != nil {
			return fmt.Errorf("failed to write swap: %w", err)
		}
	}

	return nil
}

// exportToJSON exports records to JSON format with summary metadata
func (e *Exporter) exportToJSON(records []SwapRecord, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time    `json:"export_time"`
		SwapCount  int          `json:"swap_count"`
		Swaps      []SwapRecord `json:"swaps"`
		Summary    Summary      `json:"summary"`
	}{
		ExportTime: time.Now(),
		SwapCount:  len(records),
		Swaps:      records,
		Summary:    e.calculateSummary(records),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// Summary contains aggregate statistics for exported swaps
type Summary struct {
	TotalSwaps     int       `json:"total_swaps"`
	BuyCount       int       `json:"buy_count"`
	SellCount      int       `json:"sell_count"`
	UniquePools    int       `json:"unique_pools"`
	UniqueTraders  int       `json:"unique_traders"`
	TotalBaseIn    uint64    `json:"total_base_in"`
	TotalBaseOut   uint64    `json:"total_base_out"`
	TotalFeesPaid  uint64    `json:"total_fees_paid"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

// calculateSummary calculates summary statistics for the export
func (e *Exporter) calculateSummary(records []SwapRecord) Summary {
	summary := Summary{
		TotalSwaps: len(records),
	}

	if len(records) == 0 {
		return summary
	}

	summary.StartDate = records[0].Timestamp
	summary.EndDate = records[len(records)-1].Timestamp

	poolSet := make(map[solana.PublicKey]bool)
	traderSet := make(map[solana.PublicKey]bool)

	for _, rec := range records {
		poolSet[rec.Pool] = true
		traderSet[rec.Trader] = true
		summary.TotalFeesPaid += rec.Fee

		if rec.Side == SideBuy {
			summary.BuyCount++
			summary.TotalBaseIn += rec.AmountIn
		} else {
			summary.SellCount++
			summary.TotalBaseOut += rec.AmountOut
		}
	}

	summary.UniquePools = len(poolSet)
	summary.UniqueTraders = len(traderSet)

	return summary
}
