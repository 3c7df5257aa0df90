package preview

import "testing"

func TestKeyAction(t *testing.T) {
	tests := []struct {
		key  int
		want Action
	}{
		{-1, ActionNone},
		{'c', ActionCalibrate},
		{'C', ActionCalibrate},
		{'r', ActionReset},
		{'q', ActionQuit},
		{27, ActionQuit},
		{'x', ActionNone},
		{0x100 | 'c', ActionCalibrate},
	}
	for _, tt := range tests {
		if got := KeyAction(tt.key); got != tt.want {
			t.Errorf("KeyAction(%d) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
