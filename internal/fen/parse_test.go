package fen

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "starting position",
			input: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			want:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		},
		{
			name:  "position after e4",
			input: "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
			want:  "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3",
		},
		{
			name:  "no castling rights",
			input: "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w - - 10 20",
			want:  "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w - -",
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "too few fields",
			input:   "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w",
			wantErr: true,
		},
		{
			name:    "invalid side to move",
			input:   "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
			wantErr: true,
		},
		{
			name:    "wrong rank count",
			input:   "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			wantErr: true,
		},
		{
			name:    "wrong square count",
			input:   "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMaterial(t *testing.T) {
	m, err := ParseMaterial("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseMaterial() error = %v", err)
	}

	want := Material{
		WhitePawns: 8, WhiteKnights: 2, WhiteBishops: 2, WhiteRooks: 2, WhiteQueens: 1,
		BlackPawns: 8, BlackKnights: 2, BlackBishops: 2, BlackRooks: 2, BlackQueens: 1,
	}
	if m != want {
		t.Errorf("ParseMaterial() = %+v, want %+v", m, want)
	}

	if _, err := ParseMaterial("rnbXkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"); err == nil {
		t.Error("ParseMaterial() accepted invalid piece character")
	}
}

func TestMaterialValue(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		side string
		want int
	}{
		{
			name: "starting position",
			fen:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			side: "w",
			want: 8 + 2*3 + 2*3 + 2*5 + 9, // 39
		},
		{
			name: "bare kings",
			fen:  "8/8/4k3/8/8/4K3/8/8 w - - 0 1",
			side: "w",
			want: 0,
		},
		{
			name: "rook endgame black",
			fen:  "8/5k2/8/8/8/8/3r1K2/8 b - - 0 1",
			side: "b",
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMaterial(tt.fen)
			if err != nil {
				t.Fatalf("ParseMaterial() error = %v", err)
			}
			if got := m.Value(tt.side); got != tt.want {
				t.Errorf("Value(%q) = %d, want %d", tt.side, got, tt.want)
			}
		})
	}
}

func TestSideToMove(t *testing.T) {
	side, err := SideToMove("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")
	if err != nil || side != "b" {
		t.Errorf("SideToMove() = (%q, %v), want (b, nil)", side, err)
	}

	if _, err := SideToMove("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"); err == nil {
		t.Error("SideToMove() accepted FEN without side field")
	}
}
