package metrics

import "testing"

func rawStat(kind Kind, count, sum, max, min uint64, periodSecs float64, rate float64) RawStat {
	return RawStat{
		Kind:  kind,
		Name:  NewMetricName("test", kindSuffix(kind)),
		Start: 0,
		End:   uint64(periodSecs * 1e6),
		Count: count,
		Sum:   sum,
		Max:   max,
		Min:   min,
		Rate:  rate,
	}
}

func kindSuffix(k Kind) string {
	switch k {
	case Counter:
		return "c"
	case Timer:
		return "t"
	case Gauge:
		return "g"
	case Marker:
		return "m"
	case Level:
		return "lv"
	}
	return "?"
}

func findStat(stats []Stat, suffix string) (Value, bool) {
	for _, s := range stats {
		if s.Name[len(s.Name)-1] == suffix {
			return s.Value, true
		}
	}
	return 0, false
}

func TestAllStatsCounterScenario(t *testing.T) {
	raw := rawStat(Counter, 2, 30, 20, 10, 3, 1)
	stats := AllStats(raw)
	want := map[string]Value{"count": 2, "sum": 30, "max": 20, "min": 10, "mean": 15, "rate": 10}
	for suffix, expected := range want {
		got, ok := findStat(stats, suffix)
		if !ok {
			t.Errorf("missing stat %q", suffix)
			continue
		}
		if got != expected {
			t.Errorf("counter.%s = %d, want %d", suffix, got, expected)
		}
	}
}

func TestAllStatsTimerScenario(t *testing.T) {
	raw := rawStat(Timer, 2, 30_000_000, 20_000_000, 10_000_000, 3, 1)
	stats := AllStats(raw)
	want := map[string]Value{
		"count": 2, "sum": 30_000_000, "max": 20_000_000, "min": 10_000_000,
		"mean": 15_000_000, "rate": 1,
	}
	for suffix, expected := range want {
		got, ok := findStat(stats, suffix)
		if !ok {
			t.Errorf("missing stat %q", suffix)
			continue
		}
		if got != expected {
			t.Errorf("timer.%s = %d, want %d", suffix, got, expected)
		}
	}
}

func TestAllStatsGaugeScenario(t *testing.T) {
	raw := rawStat(Gauge, 2, 30, 20, 10, 3, 1)
	stats := AllStats(raw)
	want := map[string]Value{"max": 20, "min": 10, "mean": 15}
	for suffix, expected := range want {
		got, ok := findStat(stats, suffix)
		if !ok {
			t.Errorf("missing stat %q", suffix)
			continue
		}
		if got != expected {
			t.Errorf("gauge.%s = %d, want %d", suffix, got, expected)
		}
	}
}

func TestAllStatsMarkerScenario(t *testing.T) {
	raw := rawStat(Marker, 3, 0, 0, 0, 3, 1)
	stats := AllStats(raw)
	want := map[string]Value{"count": 3, "rate": 1}
	for suffix, expected := range want {
		got, ok := findStat(stats, suffix)
		if !ok {
			t.Errorf("missing stat %q", suffix)
			continue
		}
		if got != expected {
			t.Errorf("marker.%s = %d, want %d", suffix, got, expected)
		}
	}
}

func TestAllStatsLevelScenario(t *testing.T) {
	raw := rawStat(Level, 3, uint64(int64(-26)), uint64(int64(-1)), uint64(int64(-20)), 3, 1)
	stats := AllStats(raw)
	want := map[string]int64{"sum": -26, "max": -1, "min": -20}
	for suffix, expected := range want {
		got, ok := findStat(stats, suffix)
		if !ok {
			t.Errorf("missing stat %q", suffix)
			continue
		}
		if gotSigned := int64(got); gotSigned != expected {
			t.Errorf("level.%s = %d, want %d", suffix, gotSigned, expected)
		}
		for _, s := range stats {
			if s.Name[len(s.Name)-1] == suffix && s.Kind != Level {
				t.Errorf("level.%s has Kind %s, want Level (so the renderer decodes it signed)", suffix, s.Kind)
			}
		}
	}
}

func TestAllStatsEmptyYieldsNothing(t *testing.T) {
	raw := rawStat(Counter, 0, 0, 0, 0, 1, 1)
	if stats := AllStats(raw); len(stats) != 0 {
		t.Errorf("expected no stats for a zero-count period, got %v", stats)
	}
}

func TestSummaryStats(t *testing.T) {
	c := SummaryStats(rawStat(Counter, 2, 30, 20, 10, 3, 1))
	if len(c) != 1 || c[0].Value != 30 {
		t.Errorf("summary counter = %v, want [30]", c)
	}
	tm := SummaryStats(rawStat(Timer, 2, 30_000_000, 20_000_000, 10_000_000, 3, 1))
	if len(tm) != 1 || tm[0].Value != 30_000_000 {
		t.Errorf("summary timer = %v, want [30000000]", tm)
	}
	g := SummaryStats(rawStat(Gauge, 2, 30, 20, 10, 3, 1))
	if len(g) != 1 || g[0].Value != 15 {
		t.Errorf("summary gauge = %v, want [15]", g)
	}
	m := SummaryStats(rawStat(Marker, 3, 0, 0, 0, 3, 1))
	if len(m) != 1 || m[0].Value != 3 {
		t.Errorf("summary marker = %v, want [3]", m)
	}
}

func TestScaledSumCountCompensatesSampling(t *testing.T) {
	raw := RawStat{Kind: Counter, Count: 1, Sum: 10, Rate: 0.1}
	sum, count := raw.scaledSumCount()
	if sum != 100 || count != 10 {
		t.Errorf("scaled sum/count = %d/%d, want 100/10", sum, count)
	}
}

func TestScaledSumCountNeverAppliesToMarker(t *testing.T) {
	raw := RawStat{Kind: Marker, Count: 1, Sum: 0, Rate: 0.1}
	sum, count := raw.scaledSumCount()
	if sum != 0 || count != 1 {
		t.Errorf("marker must not be rescaled, got sum=%d count=%d", sum, count)
	}
}
