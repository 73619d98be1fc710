package classify

import (
	"math"
	"testing"

	"github.com/discochess/gamereview/internal/uci"
)

func cp(n int) *int   { return &n }
func mate(n int) *int { return &n }

func cpEval(n int) uci.Evaluation   { return uci.Evaluation{Centipawns: cp(n), Depth: 18} }
func mateEval(n int) uci.Evaluation { return uci.Evaluation{Mate: mate(n), Depth: 18} }

func TestNormalize_Mate(t *testing.T) {
	tests := []struct {
		name string
		mate int
		want float64
	}{
		{"mate in 1", 1, 9990},
		{"mated in 1", -1, -9990},
		{"mate in 3", 3, 9970},
		{"mated in 5", -5, -9950},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(mateEval(tt.mate))
			if got != tt.want {
				t.Errorf("Normalize(#%d) = %v, want %v", tt.mate, got, tt.want)
			}
		})
	}
}

func TestNormalize_MateDominatesCentipawns(t *testing.T) {
	// Any mate score must strictly dominate any finite centipawn score,
	// and faster mates must score higher than slower ones.
	hugeCP := Normalize(cpEval(5000))
	slowMate := Normalize(mateEval(40))
	fastMate := Normalize(mateEval(2))

	if slowMate <= hugeCP {
		t.Errorf("mate in 40 (%v) should dominate cp 5000 (%v)", slowMate, hugeCP)
	}
	if fastMate <= slowMate {
		t.Errorf("mate in 2 (%v) should beat mate in 40 (%v)", fastMate, slowMate)
	}
}

func TestNormalize_CentipawnsAndMissing(t *testing.T) {
	if got := Normalize(cpEval(-137)); got != -137 {
		t.Errorf("Normalize(cp -137) = %v, want -137", got)
	}
	if got := Normalize(uci.Evaluation{}); got != 0 {
		t.Errorf("Normalize(empty) = %v, want 0", got)
	}
}

func TestWinChance_Equality(t *testing.T) {
	if got := WinChance(0); got != 50 {
		t.Errorf("WinChance(0) = %v, want 50", got)
	}
}

func TestWinChance_Symmetry(t *testing.T) {
	for _, cp := range []float64{1, 17, 100, 250, 999, 5000} {
		sum := WinChance(cp) + WinChance(-cp)
		if math.Abs(sum-100) > 1e-9 {
			t.Errorf("WinChance(%v) + WinChance(-%v) = %v, want 100", cp, cp, sum)
		}
	}
}

func TestClassify_CheckmateAlwaysBest(t *testing.T) {
	// Mate overrides everything: sacrificed material, a mismatched
	// preferred move, even a nominal evaluation drop.
	verdict, loss := Classify(Input{
		Ply:           30,
		Move:          "d8h4",
		Before:        cpEval(-200),
		After:         cpEval(400),
		PreferredMove: "a2a3",
		MaterialSwing: 9,
		DeliversMate:  true,
	})
	if verdict != Best || loss != 0 {
		t.Errorf("Classify(mate) = (%v, %v), want (best, 0)", verdict, loss)
	}
}

func TestClassify_StalemateIsBest(t *testing.T) {
	verdict, loss := Classify(Input{
		Ply:           60,
		Move:          "g1g2",
		Before:        cpEval(500),
		After:         cpEval(0),
		TerminalAfter: true,
	})
	if verdict != Best || loss != 0 {
		t.Errorf("Classify(terminal) = (%v, %v), want (best, 0)", verdict, loss)
	}
}

func TestClassify_OnlyLegalMoveIsForced(t *testing.T) {
	// Forced wins even when the move is also the engine's choice.
	verdict, loss := Classify(Input{
		Ply:           20,
		Move:          "g8h8",
		Before:        cpEval(-300),
		After:         cpEval(350),
		PreferredMove: "g8h8",
		OnlyLegalMove: true,
	})
	if verdict != Forced || loss != 0 {
		t.Errorf("Classify(forced) = (%v, %v), want (forced, 0)", verdict, loss)
	}
}

func TestClassify_Book(t *testing.T) {
	verdict, loss := Classify(Input{
		Ply:             4,
		Move:            "g1f3",
		Before:          cpEval(30),
		After:           cpEval(-10),
		PreferredMove:   "f1c4",
		OpeningPlyLimit: 8,
	})
	if verdict != Book {
		t.Errorf("Classify(book) = %v, want book", verdict)
	}
	if loss != 20 {
		t.Errorf("Classify(book) loss = %d, want 20", loss)
	}
}

func TestClassify_BookRequiresSmallLoss(t *testing.T) {
	// Within the opening horizon but losing 60 centipawns is no book move.
	verdict, _ := Classify(Input{
		Ply:             4,
		Move:            "g2g4",
		Before:          cpEval(30),
		After:           cpEval(30),
		OpeningPlyLimit: 8,
	})
	if verdict == Book {
		t.Errorf("Classify(loss 60 in opening) = book, want a judged verdict")
	}
}

func TestClassify_ThresholdLadder(t *testing.T) {
	// Before/after pairs chosen so the win-chance term stays below its
	// own thresholds; the centipawn loss alone drives the tier.
	tests := []struct {
		name   string
		before int
		after  int // opponent perspective; mover's score is the negation
		want   Classification
	}{
		{"loss 0 stays excellent", 20, -20, Excellent},
		{"loss 10 stays good or better", 10, 0, Excellent},
		{"loss 11 crosses into good", 11, 0, Good},
		{"loss 30 stays good", 30, 0, Good},
		{"loss 31 crosses into inaccuracy", 31, 0, Inaccuracy},
		{"loss 100 stays inaccuracy", 100, 0, Inaccuracy},
		{"loss 101 crosses into mistake", 101, 0, Mistake},
		{"loss 250 stays mistake", 250, 0, Mistake},
		{"loss 251 crosses into blunder", 251, 0, Blunder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, loss := Classify(Input{
				Ply:    20,
				Move:   "a2a3",
				Before: cpEval(tt.before),
				After:  cpEval(tt.after),
			})
			if verdict != tt.want {
				t.Errorf("Classify(before %d, after %d) = %v (loss %d), want %v",
					tt.before, tt.after, verdict, loss, tt.want)
			}
		})
	}
}

func TestClassify_LossNeverNegative(t *testing.T) {
	// A move that improves the evaluation still reports zero loss.
	_, loss := Classify(Input{
		Ply:    20,
		Move:   "a2a3",
		Before: cpEval(-50),
		After:  cpEval(-90), // mover now at +90
	})
	if loss != 0 {
		t.Errorf("loss = %d, want 0 for an improving move", loss)
	}
}

func TestClassify_MistakeDampenedWhenAlreadyLost(t *testing.T) {
	// Losing 120 centipawns from an already lost position is only an
	// inaccuracy.
	verdict, _ := Classify(Input{
		Ply:    30,
		Move:   "h7h6",
		Before: cpEval(-450),
		After:  cpEval(570),
	})
	if verdict != Inaccuracy {
		t.Errorf("Classify(loss 120 at -450) = %v, want inaccuracy", verdict)
	}
}

func TestClassify_NoDampenerWhenWinning(t *testing.T) {
	// The asymmetry is deliberate: a big drop from a winning position is
	// still a blunder even when the win survives.
	verdict, _ := Classify(Input{
		Ply:    30,
		Move:   "h7h6",
		Before: cpEval(900),
		After:  cpEval(-600),
	})
	if verdict != Blunder {
		t.Errorf("Classify(loss 300 at +900) = %v, want blunder", verdict)
	}
}

func TestClassify_PreferredMoveRaisedToBest(t *testing.T) {
	verdict, _ := Classify(Input{
		Ply:           20,
		Move:          "e4e5",
		Before:        cpEval(60),
		After:         cpEval(-52),
		PreferredMove: "e4e5",
	})
	if verdict != Best {
		t.Errorf("Classify(preferred, loss 8) = %v, want best", verdict)
	}
}

func TestClassify_PreferredMoveNotRaisedAboveLoss10(t *testing.T) {
	verdict, _ := Classify(Input{
		Ply:           20,
		Move:          "e4e5",
		Before:        cpEval(60),
		After:         cpEval(-20),
		PreferredMove: "e4e5",
	})
	if verdict == Best {
		t.Errorf("Classify(preferred, loss 40) = best, want a judged verdict")
	}
}

func TestClassify_Brilliant(t *testing.T) {
	// A bishop sacrifice on the engine's top move with minimal loss.
	verdict, loss := Classify(Input{
		Ply:           24,
		Move:          "c4f7",
		Before:        cpEval(120),
		After:         cpEval(-115), // mover keeps +115
		PreferredMove: "c4f7",
		MaterialSwing: 3,
	})
	if verdict != Brilliant {
		t.Errorf("Classify(sacrifice) = %v, want brilliant", verdict)
	}
	if loss != 5 {
		t.Errorf("Classify(sacrifice) loss = %d, want 5", loss)
	}
}

func TestClassify_BrilliantRequiresSoundness(t *testing.T) {
	// The sacrifice must not leave the mover lost.
	verdict, _ := Classify(Input{
		Ply:           24,
		Move:          "c4f7",
		Before:        cpEval(-290),
		After:         cpEval(300), // mover at -300 afterwards
		PreferredMove: "c4f7",
		MaterialSwing: 3,
	})
	if verdict == Brilliant {
		t.Errorf("unsound sacrifice classified brilliant")
	}
}

func TestClassify_Great(t *testing.T) {
	second := cpEval(-245)
	verdict, _ := Classify(Input{
		Ply:           24,
		Move:          "f3e5",
		Before:        cpEval(100),
		After:         cpEval(-95), // mover keeps +95
		PreferredMove: "f3e5",
		SecondBest:    &second,
	})
	if verdict != Great {
		t.Errorf("Classify(only good move) = %v, want great", verdict)
	}
}

func TestClassify_GreatRequiresSecondLine(t *testing.T) {
	verdict, _ := Classify(Input{
		Ply:           24,
		Move:          "f3e5",
		Before:        cpEval(100),
		After:         cpEval(-95),
		PreferredMove: "f3e5",
	})
	if verdict != Best {
		t.Errorf("Classify(no second line) = %v, want best", verdict)
	}
}

func TestClassify_GreatRequiresWideGap(t *testing.T) {
	second := cpEval(-50) // second line only 145 worse than played
	verdict, _ := Classify(Input{
		Ply:           24,
		Move:          "f3e5",
		Before:        cpEval(100),
		After:         cpEval(-95),
		PreferredMove: "f3e5",
		SecondBest:    &second,
	})
	if verdict == Great {
		t.Errorf("narrow second-line gap classified great")
	}
}
