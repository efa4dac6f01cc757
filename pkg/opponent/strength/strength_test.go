package strength

import (
	"strings"
	"testing"
)

func TestDefaultTableParses(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(config.Bands) != 6 {
		t.Fatalf("expected 6 bands, got %d", len(config.Bands))
	}
}

func TestBandCoverage(t *testing.T) {
	config := Default()

	for elo := MinElo; elo <= MaxElo; elo++ {
		band := config.BandForElo(elo)
		if band == nil {
			t.Fatalf("no band resolved for elo %d", elo)
		}

		if !band.Range.Contains(elo) {
			t.Fatalf("band %q does not contain elo %d", band.Name, elo)
		}
	}
}

func TestBandForEloClamps(t *testing.T) {
	config := Default()

	if band := config.BandForElo(0); band.Name != "beginner" {
		t.Fatalf("expected elo below range to clamp to beginner, got %q", band.Name)
	}

	if band := config.BandForElo(9000); band.Name != "master" {
		t.Fatalf("expected elo above range to clamp to master, got %q", band.Name)
	}
}

func TestBandForEloFallsBackToDefault(t *testing.T) {
	config, err := FromYAML([]byte(`
time-cap: 4000
book-ply-cap: 16
default-band: solo
time-anchors:
  - { elo: 400, time: 60 }
  - { elo: 2500, time: 900 }
bands:
  - name: solo
    range: [400, 1000]
    min-time: 60
    max-lines: 4
    base-drop: 100
    floor-drop: 300
    temperature: 0.01
dev-band:
  range: [400, 500]
  target-gap: 50
  gap-epsilon: 10
  k-scale: { min: 0.5, max: 2.0, step: 0.1 }
  drop-adjust: { min: -50, max: 50, step: 10 }
  forced-random: { rate: 0.0, min-drop: 100 }
  noise: { rate: 0.0, min-drop: 50, worst: 2 }
  phase: { plies: 10, time-ceiling: 200, line-ceiling: 6, drop-relax: 40 }
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2000 is outside every band range so the default must catch it.
	if band := config.BandForElo(2000); band.Name != "solo" {
		t.Fatalf("expected fallback to default band, got %q", band.Name)
	}
}

func TestImperfectionForElo(t *testing.T) {
	config := Default()

	profile := config.ImperfectionForElo(700)
	if profile == nil || !profile.Range.Contains(700) {
		t.Fatalf("expected a blunder profile for elo 700")
	}

	weak := config.ImperfectionForElo(500)
	strong := config.ImperfectionForElo(2400)
	if weak == nil || strong == nil {
		t.Fatalf("expected profiles at both extremes")
	}

	if weak.Rate <= strong.Rate {
		t.Fatalf("expected weaker tiers to blunder more: %v vs %v", weak.Rate, strong.Rate)
	}
}

func TestTimeBudgetInterpolates(t *testing.T) {
	config := Default()
	band := config.BandForElo(1400)

	// 1400 sits halfway between the 1200 and 1600 anchors.
	if got := config.TimeBudget(1400, band); got != 220 {
		t.Fatalf("expected 220ms at elo 1400, got %d", got)
	}

	if got := config.TimeBudget(400, config.BandForElo(400)); got != 60 {
		t.Fatalf("expected the first anchor at elo 400, got %d", got)
	}

	if got := config.TimeBudget(2500, config.BandForElo(2500)); got != 900 {
		t.Fatalf("expected the last anchor at elo 2500, got %d", got)
	}
}

func TestTimeBudgetBounds(t *testing.T) {
	config := Default()

	for elo := MinElo; elo <= MaxElo; elo += 25 {
		band := config.BandForElo(elo)
		budget := config.TimeBudget(elo, band)

		if budget < band.MinTime {
			t.Fatalf("budget %d below band floor %d at elo %d", budget, band.MinTime, elo)
		}

		if budget > config.TimeCap {
			t.Fatalf("budget %d above global cap at elo %d", budget, elo)
		}
	}
}

func TestLineBudgetShedsThinLines(t *testing.T) {
	config := Default()
	band := config.BandForElo(500)

	if got := config.LineBudget(60, band); got != 12 {
		t.Fatalf("expected 12 lines at 5ms per line, got %d", got)
	}

	if got := config.LineBudget(20, band); got != 4 {
		t.Fatalf("expected thin budgets to shed lines, got %d", got)
	}

	if got := config.LineBudget(1, band); got != 2 {
		t.Fatalf("expected shedding to stop at 2 lines, got %d", got)
	}
}

func TestBookPliesHonorsGlobalCap(t *testing.T) {
	config := Default()
	band := config.BandForElo(2400)

	if got := config.BookPlies(band); got != 16 {
		t.Fatalf("expected the global cap to hold, got %d", got)
	}
}

func TestValidateRejectsBrokenTables(t *testing.T) {
	broken := []struct {
		name   string
		mutate func(config *Config)
		want   string
	}{
		{"no bands", func(config *Config) { config.Bands = nil }, "no bands"},
		{"bad default", func(config *Config) { config.DefaultBand = "ghost" }, "default band"},
		{"inverted range", func(config *Config) { config.Bands[0].Range = Range{Lo: 900, Hi: 400} }, "inverted"},
		{"zero temperature", func(config *Config) { config.Bands[0].Temperature = 0 }, "temperature"},
		{"floor below base", func(config *Config) { config.Bands[0].FloorDrop = 10 }, "floor-drop"},
		{"bad rate", func(config *Config) { config.Imperfections[0].Rate = 1.5 }, "[0, 1]"},
	}

	for _, test := range broken {
		config, err := FromYAML(defaultsFile)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", test.name, err)
		}

		test.mutate(config)
		err = config.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation to fail", test.name)
		}

		if !strings.Contains(err.Error(), test.want) {
			t.Fatalf("%s: expected %q in error, got %v", test.name, test.want, err)
		}
	}
}

func TestDevBandMatchesImproverBand(t *testing.T) {
	config := Default()

	if !config.Dev.Contains(1300) || config.Dev.Contains(1600) {
		t.Fatalf("expected the calibration range to be 1100-1499")
	}

	if band := config.BandForElo(1300); band.Name != "improver" {
		t.Fatalf("expected the calibration range to sit inside improver, got %q", band.Name)
	}
}
