package metrics

import "math"

// RawStat is what Bucket.Flush feeds into a StatsFn: one metric's closed
// period, plus the sampling rate that was in effect when its scoreboard was
// created (1 when unsampled).
type RawStat struct {
	Kind  Kind
	Name  MetricName
	Start uint64 // microseconds since epoch
	End   uint64 // microseconds since epoch
	Count uint64
	Sum   uint64
	Max   uint64
	Min   uint64
	Rate  float64
}

// durationSeconds is (End-Start)/1e6, floored at a microsecond to avoid a
// division by zero when a flush follows its scoreboard's creation within
// the same microsecond.
func (r RawStat) durationSeconds() float64 {
	d := r.End - r.Start
	if d == 0 {
		d = 1
	}
	return float64(d) / 1e6
}

// scaledSumCount applies 1/Rate to a Counter/Timer sum and count, per spec.md's
// Open Question #3: sampled-out writes are compensated for in the stats
// function, never at the write site. Markers are never scaled (spec.md
// §4.1/§4.3), and neither is Level: its sum is a running signed total, not
// an additive count of occurrences, and scaling a two's-complement bit
// pattern through float64 would corrupt it.
func (r RawStat) scaledSumCount() (sum, count uint64) {
	if r.Rate <= 0 || r.Rate >= 1 || r.Kind == Marker || r.Kind == Level {
		return r.Sum, r.Count
	}
	return uint64(math.Round(float64(r.Sum) / r.Rate)), uint64(math.Round(float64(r.Count) / r.Rate))
}

// Stat is one derived (kind, name, value) tuple a StatsFn emits for
// publication to an OutputScope.
type Stat struct {
	Kind  Kind
	Name  MetricName
	Value Value
}

// StatsFn is a pure mapping from one metric's raw period to zero or more
// derived published values.
type StatsFn func(raw RawStat) []Stat

func levelSigned(sum uint64) int64 { return int64(sum) }

// AllStats is the default stats function: full per-kind emission table from
// spec.md §4.1.
func AllStats(raw RawStat) []Stat {
	sum, count := raw.scaledSumCount()
	if count == 0 {
		return nil
	}
	switch raw.Kind {
	case Marker:
		rate := float64(count) / raw.durationSeconds()
		return []Stat{
			{Kind: Counter, Name: raw.Name.Append("count"), Value: Value(count)},
			{Kind: Gauge, Name: raw.Name.Append("rate"), Value: Value(uint64(math.Round(rate)))},
		}
	case Counter:
		mean := sum / count
		rate := float64(sum) / raw.durationSeconds()
		return []Stat{
			{Kind: Counter, Name: raw.Name.Append("count"), Value: Value(count)},
			{Kind: Counter, Name: raw.Name.Append("sum"), Value: Value(sum)},
			{Kind: Gauge, Name: raw.Name.Append("max"), Value: Value(raw.Max)},
			{Kind: Gauge, Name: raw.Name.Append("min"), Value: Value(raw.Min)},
			{Kind: Gauge, Name: raw.Name.Append("mean"), Value: Value(mean)},
			{Kind: Gauge, Name: raw.Name.Append("rate"), Value: Value(uint64(math.Round(rate)))},
		}
	case Timer:
		mean := sum / count
		rate := float64(count) / raw.durationSeconds()
		return []Stat{
			{Kind: Counter, Name: raw.Name.Append("count"), Value: Value(count)},
			{Kind: Counter, Name: raw.Name.Append("sum"), Value: Value(sum)},
			{Kind: Gauge, Name: raw.Name.Append("max"), Value: Value(raw.Max)},
			{Kind: Gauge, Name: raw.Name.Append("min"), Value: Value(raw.Min)},
			{Kind: Gauge, Name: raw.Name.Append("mean"), Value: Value(mean)},
			{Kind: Gauge, Name: raw.Name.Append("rate"), Value: Value(uint64(math.Round(rate)))},
		}
	case Gauge:
		mean := sum / count
		return []Stat{
			{Kind: Gauge, Name: raw.Name.Append("max"), Value: Value(raw.Max)},
			{Kind: Gauge, Name: raw.Name.Append("min"), Value: Value(raw.Min)},
			{Kind: Gauge, Name: raw.Name.Append("mean"), Value: Value(mean)},
		}
	case Level:
		// max/min keep Kind Level, not Gauge: Gauge values are always
		// non-negative, but a Level's per-write extremes can be negative, and
		// the renderer (format.go's ValueAsText) only decodes the
		// two's-complement bit pattern back to a signed int64 for Kind Level.
		return []Stat{
			{Kind: Level, Name: raw.Name.Append("sum"), Value: Value(sum)},
			{Kind: Level, Name: raw.Name.Append("max"), Value: Value(raw.Max)},
			{Kind: Level, Name: raw.Name.Append("min"), Value: Value(raw.Min)},
		}
	default:
		return nil
	}
}

// SummaryStats emits exactly one value per metric: Counter/Timer sum,
// Gauge mean, Marker count.
func SummaryStats(raw RawStat) []Stat {
	sum, count := raw.scaledSumCount()
	if count == 0 {
		return nil
	}
	switch raw.Kind {
	case Marker:
		return []Stat{{Kind: Counter, Name: raw.Name, Value: Value(count)}}
	case Counter, Timer:
		return []Stat{{Kind: raw.Kind, Name: raw.Name, Value: Value(sum)}}
	case Gauge:
		return []Stat{{Kind: Gauge, Name: raw.Name, Value: Value(sum / count)}}
	case Level:
		return []Stat{{Kind: Level, Name: raw.Name, Value: Value(sum)}}
	default:
		return nil
	}
}

// AverageStats emits the mean (or, for Marker, the count; for Level, the
// running sum).
func AverageStats(raw RawStat) []Stat {
	sum, count := raw.scaledSumCount()
	if count == 0 {
		return nil
	}
	switch raw.Kind {
	case Marker:
		return []Stat{{Kind: Counter, Name: raw.Name, Value: Value(count)}}
	case Level:
		return []Stat{{Kind: Level, Name: raw.Name, Value: Value(sum)}}
	default:
		return []Stat{{Kind: Gauge, Name: raw.Name, Value: Value(sum / count)}}
	}
}
