package engine

import (
	"testing"

	"xiangqi/internal/xiangqi"
)

func TestDetectKingFaceOff(t *testing.T) {
	b := boardOf(t, map[string]byte{"e0": 'K', "e9": 'k', "a0": 'R'})
	tac, ok := DetectKingFaceOff(b, xiangqi.Red)
	if !ok {
		t.Fatalf("generals face each other")
	}
	if tac.Score != 200 || tac.Kind != TacticKingFaceOff {
		t.Fatalf("face-off tactic = %+v", tac)
	}
	if !tac.Move.Same(mv(t, "e0e9")) {
		t.Fatalf("face-off move = %s", tac.Move.ICCS())
	}
	if !containsMove(b.GeneratePieceMoves(sq(t, "e0")), tac.Move) {
		t.Fatalf("general move list must include the flying capture")
	}
	if got := DetectTactics(b, tac.Move, xiangqi.Red, 0); got.Kind != TacticKingFaceOff || got.Score != 200 {
		t.Fatalf("DetectTactics = %+v", got)
	}

	b.Set(sq(t, "e5"), xiangqi.MakePiece(xiangqi.Red, xiangqi.PieceSoldier))
	if _, ok := DetectKingFaceOff(b, xiangqi.Red); ok {
		t.Fatalf("screened generals do not face off")
	}
}

func TestDetectTacticsPatterns(t *testing.T) {
	tests := []struct {
		name      string
		pieces    map[string]byte
		fen       string
		side      xiangqi.Side
		move      string
		want      TacticKind
		wantScore int
	}{
		{
			name:   "horse fork",
			pieces: map[string]byte{"e0": 'K', "f9": 'k', "c2": 'N', "c6": 'r', "f5": 'c'},
			side:   xiangqi.Red,
			move:   "c2d4",
			want:   TacticFork,
		},
		{
			name:   "double check",
			pieces: map[string]byte{"d0": 'K', "e9": 'k', "e2": 'R', "e5": 'N'},
			side:   xiangqi.Red,
			move:   "e5d7",
			want:   TacticDoubleCheck,
		},
		{
			name:   "pin against the chariot",
			pieces: map[string]byte{"e0": 'K', "d9": 'k', "a3": 'R', "b6": 'n', "g6": 'r'},
			side:   xiangqi.Red,
			move:   "a3a6",
			want:   TacticPin,
		},
		{
			name:   "evading check",
			pieces: map[string]byte{"e0": 'K', "d9": 'k', "e7": 'r', "a1": 'R'},
			side:   xiangqi.Red,
			move:   "e0f0",
			want:   TacticDefensive,
		},
		{
			// 吃马之后车还在同一条线上，后面是车
			name:      "skewer through the horse",
			pieces:    map[string]byte{"e0": 'K', "d9": 'k', "a0": 'R', "a5": 'n', "a8": 'r'},
			side:      xiangqi.Red,
			move:      "a0a5",
			want:      TacticSkewer,
			wantScore: 85,
		},
		{
			name:      "horse uncovers the chariot",
			pieces:    map[string]byte{"d0": 'K', "e9": 'k', "a0": 'R', "a3": 'N', "a8": 'r'},
			side:      xiangqi.Red,
			move:      "a3c4",
			want:      TacticDiscoveredAttack,
			wantScore: 85,
		},
		{
			// 马送到士口上将军，同时捉车
			name:      "horse sacrifice with check",
			pieces:    map[string]byte{"d0": 'K', "e9": 'k', "e8": 'a', "b6": 'N', "b8": 'r'},
			side:      xiangqi.Red,
			move:      "b6d7",
			want:      TacticSacrifice,
			wantScore: 80,
		},
		{
			name:      "developing the horse",
			fen:       xiangqi.InitialFEN,
			side:      xiangqi.Red,
			move:      "b0c2",
			want:      TacticPositional,
			wantScore: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b *xiangqi.Board
			if tt.fen != "" {
				pos, err := xiangqi.DecodePosition(tt.fen)
				if err != nil {
					t.Fatal(err)
				}
				b = &pos.Board
			} else {
				b = boardOf(t, tt.pieces)
			}
			before := *b
			got := DetectTactics(b, mv(t, tt.move), tt.side, 0)
			if got.Kind != tt.want {
				t.Fatalf("DetectTactics(%s) = %s (%d), want %s", tt.move, got.Kind, got.Score, tt.want)
			}
			if got.Score <= 0 || got.Score >= 200 {
				t.Fatalf("score %d out of range", got.Score)
			}
			if tt.wantScore != 0 && got.Score != tt.wantScore {
				t.Fatalf("DetectTactics(%s) score = %d, want %d", tt.move, got.Score, tt.wantScore)
			}
			if *b != before {
				t.Fatalf("detection must restore the board")
			}
		})
	}
}

func fixedDetector(kind TacticKind, score int) tacticDetector {
	return func(*xiangqi.Board, xiangqi.Move, xiangqi.Side, Phase) (TacticKind, int) {
		return kind, score
	}
}

func TestTacticPriorityOnTie(t *testing.T) {
	saved := tacticDetectors
	t.Cleanup(func() { tacticDetectors = saved })

	b := boardOf(t, map[string]byte{"e0": 'K', "d9": 'k', "a0": 'R'})
	m := mv(t, "a0a1")

	tacticDetectors = []tacticDetector{fixedDetector(TacticPin, 50), fixedDetector(TacticFork, 50)}
	if got := DetectTactics(b, m, xiangqi.Red, 0); got.Kind != TacticPin || got.Score != 50 {
		t.Fatalf("earlier detector should win a tie, got %s %d", got.Kind, got.Score)
	}
	tacticDetectors = []tacticDetector{fixedDetector(TacticFork, 50), fixedDetector(TacticPin, 50)}
	if got := DetectTactics(b, m, xiangqi.Red, 0); got.Kind != TacticFork {
		t.Fatalf("earlier detector should win a tie, got %s", got.Kind)
	}
	tacticDetectors = []tacticDetector{fixedDetector(TacticFork, 50), fixedDetector(TacticSacrifice, 500)}
	if got := DetectTactics(b, m, xiangqi.Red, 0); got.Kind != TacticSacrifice || got.Score != tacticScoreCap {
		t.Fatalf("non face-off scores are capped below the face-off, got %s %d", got.Kind, got.Score)
	}
}

func TestDoubleCheckScore(t *testing.T) {
	b := boardOf(t, map[string]byte{"d0": 'K', "e9": 'k', "e2": 'R', "e5": 'N'})
	kind, score := detectDoubleCheck(b, mv(t, "e5d7"), xiangqi.Red, Endgame)
	if kind != TacticDoubleCheck || score != 80 {
		t.Fatalf("double check = %s %d, want 80", kind, score)
	}
}

func TestBaseValueByPhase(t *testing.T) {
	cases := []struct {
		pt    xiangqi.PieceType
		phase Phase
		want  int
	}{
		{xiangqi.PieceGeneral, Midgame, 10000},
		{xiangqi.PieceChariot, Opening, 900},
		{xiangqi.PieceCannon, Opening, 480},
		{xiangqi.PieceCannon, Midgame, 450},
		{xiangqi.PieceCannon, Endgame, 400},
		{xiangqi.PieceHorse, Endgame, 400},
		{xiangqi.PieceSoldier, Opening, 100},
		{xiangqi.PieceSoldier, Endgame, 200},
		{xiangqi.PieceAdvisor, Midgame, 200},
		{xiangqi.PieceNone, Midgame, 0},
	}
	for _, c := range cases {
		if got := BaseValue(c.pt, c.phase); got != c.want {
			t.Fatalf("BaseValue(%s, %s) = %d, want %d", c.pt, c.phase, got, c.want)
		}
	}
}

func TestGamePhaseAndEvaluate(t *testing.T) {
	pos := xiangqi.NewInitialPosition()
	if got := GamePhase(&pos.Board, 0); got != Opening {
		t.Fatalf("initial phase = %s", got)
	}
	if got := GamePhase(&pos.Board, 40); got != Midgame {
		t.Fatalf("full board at ply 40 = %s", got)
	}
	end := boardOf(t, map[string]byte{"e0": 'K', "d9": 'k', "a0": 'R', "c5": 'P'})
	if got := GamePhase(end, 80); got != Endgame {
		t.Fatalf("bare board phase = %s", got)
	}

	// 开局对称，双方分数相等
	if r, b := Evaluate(&pos.Board, xiangqi.Red, 0), Evaluate(&pos.Board, xiangqi.Black, 0); r != 0 || b != 0 {
		t.Fatalf("symmetric start should evaluate to 0, got red=%d black=%d", r, b)
	}
	if Evaluate(end, xiangqi.Red, 80) <= 0 {
		t.Fatalf("red is a chariot up")
	}
	if Evaluate(end, xiangqi.Red, 80) != -Evaluate(end, xiangqi.Black, 80) {
		t.Fatalf("evaluate must be antisymmetric")
	}
}
